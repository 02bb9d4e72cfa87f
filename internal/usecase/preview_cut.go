package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/cutter/internal/domain"
)

// PreviewCutParams selects the plan step to preview
type PreviewCutParams struct {
	ChainID uint64
	Step    string
}

// PreviewCut computes the diamond-cut batch of a plan step without submitting it
type PreviewCut struct {
	plans   PlanSource
	planner *CutPlanner
	sink    ProgressSink
}

// NewPreviewCut creates a new PreviewCut use case
func NewPreviewCut(plans PlanSource, planner *CutPlanner, sink ProgressSink) *PreviewCut {
	return &PreviewCut{
		plans:   plans,
		planner: planner,
		sink:    sink,
	}
}

// Run executes the preview cut use case
func (uc *PreviewCut) Run(ctx context.Context, params PreviewCutParams) (*CutPlan, error) {
	chain, err := uc.plans.ChainConfig(ctx, params.ChainID)
	if err != nil {
		return nil, err
	}

	var step *domain.UpgradeStep
	names := make([]string, 0, len(chain.Steps))
	for i := range chain.Steps {
		names = append(names, chain.Steps[i].Name)
		if chain.Steps[i].Name == params.Step {
			step = &chain.Steps[i]
		}
	}
	if step == nil {
		return nil, &domain.NotFoundError{
			Kind:        "step",
			Key:         params.Step,
			ChainID:     params.ChainID,
			Suggestions: suggestNames(params.Step, toSet(names)),
		}
	}
	if step.Kind != domain.StepDiamondCut {
		return nil, fmt.Errorf("step %q is a %s step, only diamond-cut steps can be previewed", step.Name, step.Kind)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "reading",
		ChainID: params.ChainID,
		Message: "Reading routing table",
		Spinner: true,
	})

	plan, client, err := uc.planner.Plan(ctx, StepRequest{
		ChainID: params.ChainID,
		Chain:   chain,
		Step:    *step,
	})
	if err != nil {
		return nil, err
	}
	client.Close()

	return plan, nil
}

func toSet(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = ""
	}
	return out
}
