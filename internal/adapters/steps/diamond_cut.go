package steps

import (
	"context"
	"log/slog"

	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/diamond"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// DiamondCutStep rewires a diamond to the facets named by the step
type DiamondCutStep struct {
	planner *usecase.CutPlanner
	log     *slog.Logger
}

// NewDiamondCutStep creates a new DiamondCutStep
func NewDiamondCutStep(planner *usecase.CutPlanner, log *slog.Logger) *DiamondCutStep {
	return &DiamondCutStep{
		planner: planner,
		log:     log.With("component", "DiamondCutStep"),
	}
}

// Execute plans the cut and submits it as a single batch. An empty diff
// succeeds without a transaction.
func (s *DiamondCutStep) Execute(ctx context.Context, req usecase.StepRequest) (*domain.StepOutcome, error) {
	plan, client, err := s.planner.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if plan.Empty() {
		s.log.Debug("diamond already up to date", "chain", req.ChainID, "diamond", plan.DiamondName)
		return &domain.StepOutcome{}, nil
	}

	txHash, err := client.DiamondCut(ctx, plan.Diamond, plan.Cuts, plan.Init, plan.Calldata)
	if err != nil {
		return nil, err
	}

	s.log.Debug("diamond cut applied", "chain", req.ChainID, "diamond", plan.DiamondName,
		"tx", txHash, "selectors", diamond.SelectorCount(plan.Cuts))
	return &domain.StepOutcome{TxHash: txHash.Hex()}, nil
}
