package coordinator

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jcmexdev/purchase-sagas/internal/coordinator/sagalog"
)

// Step is a single unit of work in the purchase saga. Steps are forward-only:
// once a step has succeeded its effect is never undone.
type Step interface {
	Name() string
	// Target is the state the saga reaches when Execute succeeds. A failed
	// step is logged under the state the saga was in, with the step name.
	Target() State
	Execute(ctx context.Context, p *Purchase) error
}

// Orchestrator runs a fixed sequence of steps.
type Orchestrator struct {
	steps []Step
	log   sagalog.Repository // nil-safe
}

func NewOrchestrator(steps []Step, log sagalog.Repository) *Orchestrator {
	return &Orchestrator{steps: steps, log: log}
}

// Run executes the steps strictly in order and stops at the first failure.
// On success the saga ends in a terminal state chosen by the charge result.
func (o *Orchestrator) Run(ctx context.Context, p *Purchase) error {
	payload, _ := json.Marshal(p.Request)
	o.record(ctx, p.SagaID, p.State, "", string(payload), nil)

	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing step", "saga_id", p.SagaID, "step", step.Name())
		if err := step.Execute(ctx, p); err != nil {
			slog.WarnContext(ctx, "step failed, saga stopped",
				"saga_id", p.SagaID,
				"step", step.Name(),
				"state", p.State,
				"error", err,
			)
			o.record(ctx, p.SagaID, p.State, step.Name(), "", []string{err.Error()})
			return err
		}
		p.State = step.Target()
		o.record(ctx, p.SagaID, p.State, step.Name(), "", nil)
	}

	if p.State == StateReconciled {
		p.State = StatePaymentFailed
		if p.Paid() {
			p.State = StateCompleted
		}
		o.record(ctx, p.SagaID, p.State, "", "", nil)
	}

	slog.InfoContext(ctx, "saga finished", "saga_id", p.SagaID, "state", p.State)
	return nil
}

func (o *Orchestrator) record(ctx context.Context, sagaID string, state State, step, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, sagaID, string(state), step, payload, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to write saga log", "saga_id", sagaID, "state", state, "error", err)
	}
}
