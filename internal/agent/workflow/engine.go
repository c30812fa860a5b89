package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"

	"github.com/healthbot/server/internal/agent/model"
	logx "github.com/healthbot/server/pkg/logger"
)

// Engine dispatches the current step to its handler until the session
// reaches the end step or the patient stops it.
type Engine struct {
	handlers map[model.Step]model.StepHandler
	out      io.Writer
}

// NewEngine fails unless every executable step has a handler.
func NewEngine(handlers map[model.Step]model.StepHandler, out io.Writer) (*Engine, error) {
	missing := lo.Filter(model.ExecutableSteps, func(step model.Step, _ int) bool {
		return handlers[step] == nil
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("no handler registered for steps %v", missing)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Engine{handlers: handlers, out: out}, nil
}

// Run starts from a fresh state. Interrupts and end of input finish the
// session cleanly; any other handler error is reported and returned.
func (e *Engine) Run(ctx context.Context) (state model.WorkflowState, err error) {
	state = model.NewWorkflowState()
	fmt.Fprintln(e.out, "Initializing HealthBot workflow...")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %s panicked: %v", state.CurrentStep, r)
			e.reportFault(err)
		}
		e.finish(state)
	}()

	for state.ShouldContinue && !state.CurrentStep.IsTerminal() {
		step := state.CurrentStep
		handler, ok := e.handlers[step]
		if !ok {
			err = fmt.Errorf("no handler registered for step %q", step)
			e.reportFault(err)
			return state, err
		}

		next, stepErr := handler(ctx, state)
		if stepErr != nil {
			if userAbort(ctx, stepErr) {
				logx.Debug().Err(stepErr).Str("step", step.String()).Msg("Session interrupted")
				fmt.Fprintln(e.out, "\n\nHealthBot session ended by user. Stay healthy!")
				return state, nil
			}
			e.reportFault(stepErr)
			return state, stepErr
		}

		if next.CurrentStep != step {
			logx.Debug().Str("from", step.String()).Str("to", next.CurrentStep.String()).Int("messages", next.MessageCount()).Msg("Step transition")
		}
		state = next
	}

	return state, nil
}

func (e *Engine) reportFault(err error) {
	logx.Error().Err(err).Msg("Workflow aborted")
	fmt.Fprintf(e.out, "\nAn unexpected error occurred: %v\n", err)
	fmt.Fprintln(e.out, "Please check your API keys and try again.")
}

func (e *Engine) finish(state model.WorkflowState) {
	fmt.Fprintln(e.out, "\nThank you for using HealthBot!")
	fmt.Fprintf(e.out, "\nSession Summary: Processed %d workflow steps\n", state.MessageCount())

	logx.Info().
		Int("messages", state.MessageCount()).
		Str("last_step", state.CurrentStep.String()).
		Float64("total_cost_usd", state.TotalCostUSD).
		Msg("Session finished")
}

// userAbort reports whether err means the patient ended the session.
func userAbort(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}
