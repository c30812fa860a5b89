package services

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/pkg/tavily"
)

// fakeChat replays canned replies in order. Like a real eino chat model it
// reports its own start and end to whatever handlers are on ctx.
type fakeChat struct {
	mu      sync.Mutex
	replies []*schema.Message
	err     error
	calls   [][]*schema.Message
	tools   []*schema.ToolInfo
}

func (f *fakeChat) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, input)
	ctx = callbacks.OnStart(ctx, &einomodel.CallbackInput{Messages: input, Tools: f.tools})
	if f.err != nil {
		callbacks.OnError(ctx, f.err)
		return nil, f.err
	}
	if len(f.replies) == 0 {
		err := errors.New("fakeChat: no reply queued")
		callbacks.OnError(ctx, err)
		return nil, err
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	callbacks.OnEnd(ctx, &einomodel.CallbackOutput{Message: r})
	return r, nil
}

func (f *fakeChat) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("fakeChat: streaming not supported")
}

func (f *fakeChat) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.tools = tools
	return f, nil
}

func reply(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

func toolCallReply(args ...string) *schema.Message {
	calls := make([]schema.ToolCall, 0, len(args))
	for i, a := range args {
		calls = append(calls, schema.ToolCall{
			ID: string(rune('a' + i)),
			Function: schema.FunctionCall{
				Name:      "medical_search",
				Arguments: a,
			},
		})
	}
	return schema.AssistantMessage("", calls)
}

// fakeBackend records queries and answers from a fixed table.
type fakeBackend struct {
	results map[string][]tavily.Result
	err     error
	queries []tavily.SearchRequest
}

func (f *fakeBackend) Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error) {
	f.queries = append(f.queries, req)
	if f.err != nil {
		return nil, f.err
	}
	return &tavily.SearchResponse{Query: req.Query, Results: f.results[req.Query]}, nil
}

// memoryCache is an in-process model.SearchCache.
type memoryCache struct {
	entries map[string][]model.Document
	loadErr error
	stores  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]model.Document{}}
}

func (m *memoryCache) Load(ctx context.Context, query string) ([]model.Document, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	docs, ok := m.entries[query]
	return docs, ok, nil
}

func (m *memoryCache) Store(ctx context.Context, query string, docs []model.Document) error {
	m.stores++
	m.entries[query] = docs
	return nil
}
