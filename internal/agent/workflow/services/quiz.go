package services

import (
	"context"
	"fmt"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/agent/workflow/parsers"
	"github.com/healthbot/server/internal/agent/workflow/prompts"
	errx "github.com/healthbot/server/internal/core/error"
	logx "github.com/healthbot/server/pkg/logger"
)

// QuizMaster writes comprehension questions and the feedback on answers.
type QuizMaster struct {
	completer *Completer
}

func NewQuizMaster(completer *Completer) *QuizMaster {
	return &QuizMaster{completer: completer}
}

// GenerateQuiz asks for one question built only from summary. A reply
// without a usable "Correct Answer:" line is an error: such a quiz could
// never be graded correct.
func (q *QuizMaster) GenerateQuiz(ctx context.Context, topic, summary string) (*model.Quiz, error) {
	msgs, err := prompts.RenderQuiz(q.completer.promptScope(ctx, "generate_quiz"), topic, summary)
	if err != nil {
		return nil, err
	}

	reply, cost, err := q.completer.Complete(ctx, "generate_quiz", msgs)
	if err != nil {
		return nil, err
	}

	answer, ok := parsers.ParseCorrectAnswer(reply.Content)
	if !ok {
		logx.Warn().Str("topic", topic).Int("quiz_len", len(reply.Content)).Msg("generated quiz has no correct answer marker")
		return nil, fmt.Errorf("generate quiz: %w", errx.ErrMissingCorrectAnswer)
	}

	return &model.Quiz{Text: reply.Content, CorrectAnswer: answer, CostUSD: cost}, nil
}

// GradeQuiz decides the grade locally, then asks the model to justify it
// from the summary.
func (q *QuizMaster) GradeQuiz(ctx context.Context, in model.GradeInput) (*model.GradeResult, error) {
	grade := GradeLetter(in.PatientAnswer, in.CorrectAnswer)

	msgs, err := prompts.RenderGrade(q.completer.promptScope(ctx, "grade_quiz"), in, grade)
	if err != nil {
		return nil, err
	}

	reply, cost, err := q.completer.Complete(ctx, "grade_quiz", msgs)
	if err != nil {
		return nil, err
	}

	return &model.GradeResult{Grade: grade, Feedback: reply.Content, CostUSD: cost}, nil
}

// GradeLetter is "A" when the patient picked the canonical choice and "F"
// otherwise. An unknown canonical choice never matches.
func GradeLetter(patientAnswer, correctAnswer string) string {
	if correctAnswer != "" && patientAnswer == correctAnswer {
		return model.GradeCorrect
	}
	return model.GradeIncorrect
}

var (
	_ model.QuizGenerator = (*QuizMaster)(nil)
	_ model.QuizGrader    = (*QuizMaster)(nil)
)
