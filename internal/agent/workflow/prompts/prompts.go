package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/agent/workflow/tools"
)

var (
	//go:embed template/search_user.txt
	searchUserPrompt string

	//go:embed template/summary_system.txt
	summarySystemPrompt string
	//go:embed template/summary_user.txt
	summaryUserPrompt string

	//go:embed template/quiz_system.txt
	quizSystemPrompt string
	//go:embed template/quiz_user.txt
	quizUserPrompt string

	//go:embed template/grade_system.txt
	gradeSystemPrompt string
	//go:embed template/grade_user.txt
	gradeUserPrompt string
)

// RenderSearch renders the prompt that asks the model to call the medical search tool.
func RenderSearch(ctx context.Context, topic string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.UserMessage(searchUserPrompt),
	)
	return render(ctx, "search", tpl, map[string]any{
		"Topic":      topic,
		"SearchTool": tools.ToolMedicalSearch,
	})
}

// RenderSummary renders the summarization prompt over the search documents.
func RenderSummary(ctx context.Context, topic string, docs []model.Document) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(summarySystemPrompt),
		schema.UserMessage(summaryUserPrompt),
	)
	sources := lo.Map(docs, func(d model.Document, _ int) string {
		if d.Source == "" {
			return "Unknown source"
		}
		return d.Source
	})
	return render(ctx, "summary", tpl, map[string]any{
		"Topic":     topic,
		"Documents": docs,
		"Sources":   strings.Join(sources, ", "),
	})
}

// RenderQuiz renders the quiz generation prompt. The summary is the only data source.
func RenderQuiz(ctx context.Context, topic, summary string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(quizSystemPrompt),
		schema.UserMessage(quizUserPrompt),
	)
	return render(ctx, "quiz", tpl, map[string]any{
		"Topic":        topic,
		"Summary":      summary,
		"AnswerMarker": model.CorrectAnswerMarker,
	})
}

// RenderGrade renders the feedback prompt for an already decided grade.
func RenderGrade(ctx context.Context, in model.GradeInput, grade string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(gradeSystemPrompt),
		schema.UserMessage(gradeUserPrompt),
	)
	return render(ctx, "grade", tpl, map[string]any{
		"Topic":         in.Topic,
		"PatientAnswer": in.PatientAnswer,
		"CorrectAnswer": in.CorrectAnswer,
		"Correct":       grade == model.GradeCorrect,
		"Grade":         grade,
		"QuizQuestion":  in.QuizQuestion,
		"Summary":       in.Summary,
	})
}

func render(ctx context.Context, name string, tpl prompt.ChatTemplate, vars map[string]any) ([]*schema.Message, error) {
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("%s prompt render: empty result", name)
	}
	return msgs, nil
}
