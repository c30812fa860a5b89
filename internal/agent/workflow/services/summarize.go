package services

import (
	"context"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/agent/workflow/prompts"
)

// Summarizer turns search documents into patient education text.
type Summarizer struct {
	completer *Completer
}

func NewSummarizer(completer *Completer) *Summarizer {
	return &Summarizer{completer: completer}
}

func (s *Summarizer) Summarize(ctx context.Context, topic string, docs []model.Document) (*model.SummaryResult, error) {
	msgs, err := prompts.RenderSummary(s.completer.promptScope(ctx, "summarize"), topic, docs)
	if err != nil {
		return nil, err
	}

	reply, cost, err := s.completer.Complete(ctx, "summarize", msgs)
	if err != nil {
		return nil, err
	}
	return &model.SummaryResult{Text: reply.Content, CostUSD: cost}, nil
}

var _ model.Summarizer = (*Summarizer)(nil)
