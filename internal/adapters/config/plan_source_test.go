package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
)

func TestPlanSource(t *testing.T) {
	ctx := context.Background()
	steps := []domain.UpgradeStep{{Name: "a", Kind: domain.StepRecord, Args: []string{"A", "0x01"}}}
	source := NewPlanSourceAdapter(&config.RuntimeConfig{Plan: &config.PlanFile{
		Chains: map[uint64]*config.ChainConfig{
			137:  {Steps: steps},
			1337: {ChainID: 1337},
		},
	}})

	t.Run("list is sorted", func(t *testing.T) {
		chains, err := source.ListChains(ctx)
		require.NoError(t, err)
		assert.Equal(t, []uint64{137, 1337}, chains)
	})

	t.Run("load returns an independent copy", func(t *testing.T) {
		plan, err := source.LoadPlan(ctx, 137)
		require.NoError(t, err)
		assert.Equal(t, uint64(137), plan.ChainID)
		require.Len(t, plan.Steps, 1)

		plan.Steps[0].Name = "mutated"
		again, err := source.LoadPlan(ctx, 137)
		require.NoError(t, err)
		assert.Equal(t, "a", again.Steps[0].Name)
	})

	t.Run("unregistered chain", func(t *testing.T) {
		_, err := source.LoadPlan(ctx, 5)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []string{"137", "1337"}, nf.Suggestions)
	})

	t.Run("empty plan", func(t *testing.T) {
		plan, err := source.LoadPlan(ctx, 1337)
		require.NoError(t, err)
		assert.True(t, plan.Empty())
	})
}
