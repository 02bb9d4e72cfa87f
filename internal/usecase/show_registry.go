package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/trebuchet-org/cutter/internal/domain"
)

// ShowRegistryResult is the registry view of one chain
type ShowRegistryResult struct {
	ChainID   uint64
	Addresses []domain.AddressRecord
	// Remaining is nil when the chain has never been run
	Remaining []domain.UpgradeStep
	// Started reports whether progress has ever been persisted
	Started bool
	Total   int
}

// Done reports whether the chain has run its whole plan
func (r *ShowRegistryResult) Done() bool {
	return r.Started && len(r.Remaining) == 0
}

// ShowRegistry shows recorded addresses and the remaining queue of a chain
type ShowRegistry struct {
	plans    PlanSource
	registry ChainRegistry
}

// NewShowRegistry creates a new ShowRegistry use case
func NewShowRegistry(plans PlanSource, registry ChainRegistry) *ShowRegistry {
	return &ShowRegistry{
		plans:    plans,
		registry: registry,
	}
}

// Run executes the show registry use case
func (uc *ShowRegistry) Run(ctx context.Context, chainID uint64) (*ShowRegistryResult, error) {
	plan, err := uc.plans.LoadPlan(ctx, chainID)
	if err != nil {
		return nil, err
	}

	addresses, err := uc.registry.ListAddresses(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	progress, err := uc.registry.GetProgress(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}

	result := &ShowRegistryResult{
		ChainID: chainID,
		Total:   len(plan.Steps),
	}
	if progress != nil {
		result.Started = true
		result.Remaining = progress.Steps
	} else {
		result.Remaining = plan.Steps
	}

	for name, addr := range addresses {
		result.Addresses = append(result.Addresses, domain.AddressRecord{Name: name, Address: addr})
	}
	sort.Slice(result.Addresses, func(i, j int) bool {
		return result.Addresses[i].Name < result.Addresses[j].Name
	})

	return result, nil
}
