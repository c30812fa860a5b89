package workflow

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbot/server/internal/agent/model"
)

// scriptedHandlers returns a handler for every step; overrides replace some.
func scriptedHandlers(overrides map[model.Step]model.StepHandler) map[model.Step]model.StepHandler {
	handlers := map[model.Step]model.StepHandler{}
	order := model.ExecutableSteps
	for i, step := range order {
		next := model.StepEnd
		if i+1 < len(order) {
			next = order[i+1]
		}
		msgType := string(step)
		handlers[step] = func(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
			s = s.WithStep(next)
			if next == model.StepEnd {
				s.ShouldContinue = false
			}
			return s.AddMessage(msgType, "done", nil), nil
		}
	}
	for step, h := range overrides {
		handlers[step] = h
	}
	return handlers
}

func TestNewEngine_RequiresEveryStep(t *testing.T) {
	handlers := scriptedHandlers(nil)
	delete(handlers, model.StepGradeQuiz)

	_, err := NewEngine(handlers, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grade_quiz")

	_, err = NewEngine(scriptedHandlers(nil), io.Discard)
	assert.NoError(t, err)
}

func TestEngine_RunsToEnd(t *testing.T) {
	var out bytes.Buffer
	e, err := NewEngine(scriptedHandlers(nil), &out)
	require.NoError(t, err)

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StepEnd, state.CurrentStep)
	assert.False(t, state.ShouldContinue)
	assert.Equal(t, len(model.ExecutableSteps), state.MessageCount())
	assert.Contains(t, out.String(), "Thank you for using HealthBot!")
	assert.Contains(t, out.String(), "Session Summary: Processed 8 workflow steps")
}

func TestEngine_StopsWhenContinuationIsFalse(t *testing.T) {
	calls := 0
	e, err := NewEngine(scriptedHandlers(map[model.Step]model.StepHandler{
		model.StepGetTopic: func(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
			calls++
			s.ShouldContinue = false
			return s, nil
		},
	}), io.Discard)
	require.NoError(t, err)

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, model.StepGetTopic, state.CurrentStep)
}

func TestEngine_UserAbort(t *testing.T) {
	for _, abort := range []error{io.EOF, context.Canceled} {
		t.Run(abort.Error(), func(t *testing.T) {
			var out bytes.Buffer
			e, err := NewEngine(scriptedHandlers(map[model.Step]model.StepHandler{
				model.StepSearch: func(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
					return s, abort
				},
			}), &out)
			require.NoError(t, err)

			state, err := e.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, model.StepSearch, state.CurrentStep)
			assert.Contains(t, out.String(), "HealthBot session ended by user. Stay healthy!")
			assert.Contains(t, out.String(), "Session Summary: Processed 1 workflow steps")
		})
	}
}

func TestEngine_UnexpectedFault(t *testing.T) {
	boom := errors.New("console closed unexpectedly")
	var out bytes.Buffer
	e, err := NewEngine(scriptedHandlers(map[model.Step]model.StepHandler{
		model.StepPresentInfo: func(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
			return s, boom
		},
	}), &out)
	require.NoError(t, err)

	state, err := e.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, state.MessageCount())
	assert.Contains(t, out.String(), "An unexpected error occurred: console closed unexpectedly")
	assert.Contains(t, out.String(), "Please check your API keys and try again.")
	assert.Contains(t, out.String(), "Thank you for using HealthBot!")
}

func TestEngine_RecoversFromPanic(t *testing.T) {
	var out bytes.Buffer
	e, err := NewEngine(scriptedHandlers(map[model.Step]model.StepHandler{
		model.StepSummarize: func(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
			panic("nil summary")
		},
	}), &out)
	require.NoError(t, err)

	state, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarize")
	assert.Equal(t, 2, state.MessageCount())
	assert.Contains(t, out.String(), "Session Summary: Processed 2 workflow steps")
}

func TestEngine_HandlerSeesValueNotReference(t *testing.T) {
	var seen model.WorkflowState
	e, err := NewEngine(scriptedHandlers(map[model.Step]model.StepHandler{
		model.StepGetTopic: func(ctx context.Context, s model.WorkflowState) (model.WorkflowState, error) {
			seen = s
			next := s.AddMessage(model.MessageUserInput, "Learning topic: flu", nil)
			next.CurrentTopic = "flu"
			return next.WithStep(model.StepSearch), nil
		},
	}), io.Discard)
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seen.CurrentTopic)
	assert.Empty(t, seen.Messages)
}
