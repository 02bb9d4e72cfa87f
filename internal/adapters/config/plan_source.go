package config

import (
	"context"
	"sort"
	"strconv"

	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// PlanSourceAdapter serves the plans parsed from the plan file
type PlanSourceAdapter struct {
	plan *config.PlanFile
}

// NewPlanSourceAdapter creates a new adapter
func NewPlanSourceAdapter(cfg *config.RuntimeConfig) *PlanSourceAdapter {
	plan := cfg.Plan
	if plan == nil {
		plan = &config.PlanFile{}
	}
	return &PlanSourceAdapter{plan: plan}
}

// ChainConfig returns the static configuration of a chain
func (a *PlanSourceAdapter) ChainConfig(_ context.Context, chainID uint64) (*config.ChainConfig, error) {
	chain, ok := a.plan.Chains[chainID]
	if !ok {
		return nil, &domain.NotFoundError{
			Kind:        "chain",
			Key:         strconv.FormatUint(chainID, 10),
			Suggestions: a.chainNames(),
		}
	}
	if chain.ChainID == 0 {
		chain.ChainID = chainID
	}
	return chain, nil
}

// LoadPlan returns a copy of the chain's step list
func (a *PlanSourceAdapter) LoadPlan(ctx context.Context, chainID uint64) (*domain.UpgradePlan, error) {
	chain, err := a.ChainConfig(ctx, chainID)
	if err != nil {
		return nil, err
	}
	plan := &domain.UpgradePlan{ChainID: chainID, Steps: chain.Steps}
	return plan.Clone(), nil
}

// ListChains returns every configured chain, ascending
func (a *PlanSourceAdapter) ListChains(_ context.Context) ([]uint64, error) {
	chains := make([]uint64, 0, len(a.plan.Chains))
	for id := range a.plan.Chains {
		chains = append(chains, id)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains, nil
}

func (a *PlanSourceAdapter) chainNames() []string {
	chains, _ := a.ListChains(context.Background())
	names := make([]string, 0, len(chains))
	for _, id := range chains {
		names = append(names, strconv.FormatUint(id, 10))
	}
	return names
}

// Ensure the adapter implements the interface
var _ usecase.PlanSource = (*PlanSourceAdapter)(nil)
