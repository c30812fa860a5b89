package services

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/healthbot/server/internal/agent/model"
	errx "github.com/healthbot/server/internal/core/error"
	logx "github.com/healthbot/server/pkg/logger"
)

// Completer sends rendered prompts to the chat model and prices the reply.
type Completer struct {
	chat      einomodel.BaseChatModel
	modelName string
	handlers  []callbacks.Handler
}

func NewCompleter(chat einomodel.BaseChatModel, modelName string, handlers ...callbacks.Handler) *Completer {
	return &Completer{chat: chat, modelName: modelName, handlers: handlers}
}

// scope initialises eino callbacks on ctx for one component run named name.
func (c *Completer) scope(ctx context.Context, name, typ string, component components.Component) context.Context {
	if len(c.handlers) == 0 {
		return ctx
	}
	return callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      name,
		Type:      typ,
		Component: component,
	}, c.handlers...)
}

// promptScope is the context prompt templates are rendered under, so the
// prompt observer sees the render and not the model call that follows.
func (c *Completer) promptScope(ctx context.Context, name string) context.Context {
	return c.scope(ctx, name, "GoTemplate", components.ComponentOfPrompt)
}

// Complete returns the model reply and its cost in USD. name labels the
// model run for the callback handlers.
func (c *Completer) Complete(ctx context.Context, name string, msgs []*schema.Message) (*schema.Message, float64, error) {
	ctx = c.scope(ctx, name, c.modelName, components.ComponentOfChatModel)

	reply, err := c.chat.Generate(ctx, msgs)
	if err != nil {
		return nil, 0, errx.WrapCompletion(err)
	}
	if reply == nil {
		return nil, 0, errx.WrapCompletion(errors.New("empty reply"))
	}

	cost := model.MessageCost(c.modelName, reply)
	if usage := reply.ResponseMeta; usage != nil && usage.Usage != nil {
		logx.Debug().
			Str("model", c.modelName).
			Int("prompt_tokens", usage.Usage.PromptTokens).
			Int("completion_tokens", usage.Usage.CompletionTokens).
			Int("total_tokens", usage.Usage.TotalTokens).
			Float64("total_cost_usd", cost).
			Msg("LLM usage")
	}
	return reply, cost, nil
}
