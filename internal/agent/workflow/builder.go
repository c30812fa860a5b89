package workflow

import (
	"context"
	"fmt"
	"io"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/agent/workflow/nodes"
	"github.com/healthbot/server/internal/agent/workflow/observers"
	"github.com/healthbot/server/internal/agent/workflow/services"
	logx "github.com/healthbot/server/pkg/logger"
	"github.com/healthbot/server/pkg/tavily"
)

// Config holds everything needed to assemble a session end-to-end.
type Config struct {
	APIKey  string
	BaseURL string
	Chat    model.ChatModelConfig
	Search  model.SearchConfig

	// SearchCache is optional
	SearchCache model.SearchCache
	Console     nodes.Console
	Output      io.Writer
}

// Build creates the Gemini chat model and wires the session around it.
func Build(ctx context.Context, cfg Config) (*Engine, error) {
	chat, err := nodes.NewChatModel(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Chat:    &cfg.Chat,
	})
	if err != nil {
		return nil, err
	}
	return BuildWithChatModel(ctx, cfg, chat)
}

// BuildWithChatModel wires the collaborators, the step handlers and the
// engine around an existing chat model.
func BuildWithChatModel(ctx context.Context, cfg Config, chat einomodel.ToolCallingChatModel) (*Engine, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	if cfg.Console == nil {
		return nil, fmt.Errorf("console is nil")
	}

	searchClient, err := tavily.NewClient(cfg.Search.APIKey,
		tavily.WithBaseURL(cfg.Search.BaseURL),
		tavily.WithTimeout(cfg.Search.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}

	handler := observers.NewAllCallbacks()
	completer := services.NewCompleter(chat, cfg.Chat.Model, handler)

	searcher, err := services.NewSearcher(ctx, chat, cfg.Chat.Model, searchClient, cfg.Search, cfg.SearchCache, handler)
	if err != nil {
		return nil, err
	}
	quizMaster := services.NewQuizMaster(completer)

	n, err := nodes.NewNodes(nodes.Deps{
		Console:    cfg.Console,
		Searcher:   searcher,
		Summarizer: services.NewSummarizer(completer),
		Quizzer:    quizMaster,
		Grader:     quizMaster,
	})
	if err != nil {
		return nil, err
	}

	engine, err := NewEngine(n.Handlers(), cfg.Output)
	if err != nil {
		return nil, err
	}

	logx.Debug().
		Str("model", cfg.Chat.Model).
		Bool("search_cache", cfg.SearchCache != nil).
		Msg("HealthBot workflow built successfully")
	return engine, nil
}
