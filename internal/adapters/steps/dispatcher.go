package steps

import (
	"context"
	"log/slog"

	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// Dispatcher routes a step to the executor registered for its kind
type Dispatcher struct {
	executors map[domain.StepKind]usecase.StepExecutor
	log       *slog.Logger
}

// NewDispatcher creates a dispatcher over the built-in step kinds
func NewDispatcher(
	script *ScriptStep,
	cut *DiamondCutStep,
	record *RecordStep,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		executors: map[domain.StepKind]usecase.StepExecutor{
			domain.StepScript:     script,
			domain.StepDiamondCut: cut,
			domain.StepRecord:     record,
		},
		log: log.With("component", "StepDispatcher"),
	}
}

// Execute runs the step with the executor of its kind
func (d *Dispatcher) Execute(ctx context.Context, req usecase.StepRequest) (*domain.StepOutcome, error) {
	executor, ok := d.executors[req.Step.Kind]
	if !ok {
		return nil, domain.NewConfigurationError(req.Step.Name, "unknown step kind %q", req.Step.Kind)
	}
	d.log.Debug("executing step", "chain", req.ChainID, "step", req.Step.Name, "kind", req.Step.Kind)
	return executor.Execute(ctx, req)
}

// Ensure Dispatcher implements StepExecutor
var _ usecase.StepExecutor = (*Dispatcher)(nil)
