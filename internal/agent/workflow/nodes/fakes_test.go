package nodes

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/healthbot/server/internal/agent/model"
)

// scriptedConsole answers ReadLine from a fixed list of lines.
type scriptedConsole struct {
	lines   []string
	prompts []string
	out     strings.Builder
}

func newScriptedConsole(lines ...string) *scriptedConsole {
	return &scriptedConsole{lines: lines}
}

func (c *scriptedConsole) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.prompts = append(c.prompts, prompt)
	if len(c.lines) == 0 {
		return "", io.EOF
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return strings.TrimSpace(line), nil
}

func (c *scriptedConsole) Println(a ...any) {
	fmt.Fprintln(&c.out, a...)
}

func (c *scriptedConsole) Printf(format string, a ...any) {
	fmt.Fprintf(&c.out, format, a...)
}

func (c *scriptedConsole) Markdown(md string) {
	fmt.Fprintln(&c.out, md)
}

func (c *scriptedConsole) Output() string {
	return c.out.String()
}

type fakeSearcher struct {
	docs  []model.Document
	err   error
	calls int
}

func (f *fakeSearcher) Search(ctx context.Context, topic string) (*model.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.SearchResult{Documents: f.docs, CostUSD: 0.001}, nil
}

type fakeSummarizer struct {
	text string
	err  error
	docs []model.Document
}

func (f *fakeSummarizer) Summarize(ctx context.Context, topic string, docs []model.Document) (*model.SummaryResult, error) {
	f.docs = docs
	if f.err != nil {
		return nil, f.err
	}
	return &model.SummaryResult{Text: f.text, CostUSD: 0.002}, nil
}

type fakeQuizzer struct {
	quiz *model.Quiz
	err  error
}

func (f *fakeQuizzer) GenerateQuiz(ctx context.Context, topic, summary string) (*model.Quiz, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quiz, nil
}

// fakeGrader grades by letter equality like the real one and echoes a
// fixed feedback text.
type fakeGrader struct {
	feedback string
	err      error
	in       model.GradeInput
}

func (f *fakeGrader) GradeQuiz(ctx context.Context, in model.GradeInput) (*model.GradeResult, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	grade := model.GradeIncorrect
	if in.CorrectAnswer != "" && in.PatientAnswer == in.CorrectAnswer {
		grade = model.GradeCorrect
	}
	return &model.GradeResult{Grade: grade, Feedback: f.feedback}, nil
}
