package model

import (
	"context"
)

// SearchResult is what a medical search produced, with the model cost it took.
type SearchResult struct {
	Documents []Document
	CostUSD   float64
}

// SummaryResult is a patient-friendly summary, trusted verbatim.
type SummaryResult struct {
	Text    string
	CostUSD float64
}

type MedicalSearcher interface {
	// Search finds documents about topic on the trusted medical domains
	Search(ctx context.Context, topic string) (*SearchResult, error)
}

type Summarizer interface {
	// Summarize writes a summary of topic using only docs
	Summarize(ctx context.Context, topic string, docs []Document) (*SummaryResult, error)
}

type QuizGenerator interface {
	// GenerateQuiz writes one multiple choice question answerable from summary
	GenerateQuiz(ctx context.Context, topic, summary string) (*Quiz, error)
}

type QuizGrader interface {
	// GradeQuiz grades by letter equality and asks for supporting feedback
	GradeQuiz(ctx context.Context, in GradeInput) (*GradeResult, error)
}

// StepHandler runs one workflow step and returns the next state.
// A returned error ends the session; collaborator faults are handled
// inside the step and never returned.
type StepHandler func(ctx context.Context, s WorkflowState) (WorkflowState, error)
