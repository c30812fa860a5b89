package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/agent/workflow/prompts"
	"github.com/healthbot/server/internal/agent/workflow/tools"
	errx "github.com/healthbot/server/internal/core/error"
	logx "github.com/healthbot/server/pkg/logger"
	"github.com/healthbot/server/pkg/tavily"
)

// SearchBackend is the web search provider.
type SearchBackend interface {
	Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error)
}

// Searcher lets the chat model plan the search through the medical_search
// tool and runs the query itself when the model makes no tool call.
type Searcher struct {
	completer *Completer
	backend   SearchBackend
	cfg       model.SearchConfig
	cache     model.SearchCache
	tool      tool.InvokableTool
	handlers  []callbacks.Handler
}

// NewSearcher binds the medical_search tool to chat. cache may be nil.
func NewSearcher(
	ctx context.Context,
	chat einomodel.ToolCallingChatModel,
	modelName string,
	backend SearchBackend,
	cfg model.SearchConfig,
	cache model.SearchCache,
	handlers ...callbacks.Handler,
) (*Searcher, error) {
	if chat == nil || backend == nil {
		return nil, fmt.Errorf("searcher needs a chat model and a search backend")
	}

	s := &Searcher{
		backend:  backend,
		cfg:      cfg,
		cache:    cache,
		handlers: handlers,
	}
	s.tool = tools.NewMedicalSearchTool(s.lookup)

	info, err := s.tool.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("medical search tool info: %w", err)
	}
	bound, err := chat.WithTools([]*schema.ToolInfo{info})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}
	s.completer = NewCompleter(bound, modelName, handlers...)

	return s, nil
}

// DirectQuery is the query used when the model does not call the tool.
func DirectQuery(topic string) string {
	return topic + " medical information symptoms treatment causes"
}

func (s *Searcher) Search(ctx context.Context, topic string) (*model.SearchResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errx.WrapSearch(errors.New("topic is required"), http.StatusBadRequest)
	}

	msgs, err := prompts.RenderSearch(s.completer.promptScope(ctx, "plan_search"), topic)
	if err != nil {
		return nil, err
	}

	reply, cost, err := s.completer.Complete(ctx, "plan_search", msgs)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logx.Warn().Err(err).Str("topic", topic).Msg("Search planning failed - falling back to direct query")
		reply = nil
	}

	docs, called, err := s.runToolCalls(ctx, reply)
	if err != nil {
		return nil, err
	}
	if !called {
		logx.Debug().Str("topic", topic).Msg("No medical_search tool call - running direct query")
		docs, err = s.lookup(ctx, DirectQuery(topic))
		if err != nil {
			return nil, err
		}
	}

	return &model.SearchResult{Documents: docs, CostUSD: cost}, nil
}

// runToolCalls executes every medical_search call in reply. called is false
// when the reply holds no such call.
func (s *Searcher) runToolCalls(ctx context.Context, reply *schema.Message) (docs []model.Document, called bool, err error) {
	if reply == nil || len(reply.ToolCalls) == 0 {
		return nil, false, nil
	}

	docs = []model.Document{}
	for _, tc := range reply.ToolCalls {
		if tc.Function.Name != tools.ToolMedicalSearch {
			logx.Warn().Str("tool_name", tc.Function.Name).Msg("Unknown tool call; ignored")
			continue
		}
		called = true

		out, err := s.invokeTool(ctx, tc.Function.Arguments)
		if err != nil {
			return nil, true, errx.WrapSearch(err, 0)
		}

		var res tools.MedicalSearchOutput
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			return nil, true, errx.WrapSearch(fmt.Errorf("decode tool output: %w", err), 0)
		}
		docs = append(docs, res.Documents...)
	}
	return docs, called, nil
}

// invokeTool runs the tool with tool lifecycle callbacks around it.
func (s *Searcher) invokeTool(ctx context.Context, arguments string) (string, error) {
	if len(s.handlers) > 0 {
		ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
			Name:      tools.ToolMedicalSearch,
			Type:      "Tavily",
			Component: components.ComponentOfTool,
		}, s.handlers...)
	}
	ctx = callbacks.OnStart(ctx, &tool.CallbackInput{ArgumentsInJSON: arguments})

	out, err := s.tool.InvokableRun(ctx, arguments)
	if err != nil {
		callbacks.OnError(ctx, err)
		return "", err
	}

	callbacks.OnEnd(ctx, &tool.CallbackOutput{Response: out})
	return out, nil
}

// lookup answers one query from the cache or the provider.
func (s *Searcher) lookup(ctx context.Context, query string) ([]model.Document, error) {
	if s.cache != nil {
		docs, ok, err := s.cache.Load(ctx, query)
		switch {
		case err != nil:
			logx.Warn().Err(err).Str("query", query).Msg("Search cache unavailable")
		case ok:
			logx.Debug().Str("query", query).Int("results", len(docs)).Msg("Search cache hit")
			return docs, nil
		}
	}

	resp, err := s.backend.Search(ctx, tavily.SearchRequest{
		Query:          query,
		SearchDepth:    s.cfg.Depth,
		MaxResults:     s.cfg.MaxResults,
		IncludeDomains: s.cfg.IncludeDomains,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		status := 0
		var apiErr *tavily.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		logx.Error().Err(err).Str("query", query).Int("status", status).Msg("Medical search failed")
		return nil, errx.WrapSearch(err, status)
	}

	docs := lo.FilterMap(resp.Results, func(r tavily.Result, _ int) (model.Document, bool) {
		return model.Document{Source: r.URL, Title: r.Title, Content: r.Content}, IsTrustedSource(r.URL, s.cfg.IncludeDomains)
	})
	if dropped := len(resp.Results) - len(docs); dropped > 0 {
		logx.Warn().Int("dropped", dropped).Str("query", query).Msg("Dropped results outside trusted domains")
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, query, docs); err != nil {
			logx.Warn().Err(err).Str("query", query).Msg("Failed to cache search results")
		}
	}
	return docs, nil
}

// IsTrustedSource reports whether rawURL is on one of domains or a
// subdomain of one. An empty allow-list trusts everything.
func IsTrustedSource(rawURL string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	return lo.ContainsBy(domains, func(d string) bool {
		d = strings.ToLower(strings.TrimSpace(d))
		return d != "" && (host == d || strings.HasSuffix(host, "."+d))
	})
}

var _ model.MedicalSearcher = (*Searcher)(nil)
