package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/logging"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

func TestShowRegistry(t *testing.T) {
	ctx := context.Background()
	plans := newStubPlans(&config.ChainConfig{ChainID: 1, Steps: steps("A", "B", "C")})

	t.Run("never run", func(t *testing.T) {
		res, err := usecase.NewShowRegistry(plans, newMemRegistry()).Run(ctx, 1)
		require.NoError(t, err)
		assert.False(t, res.Started)
		assert.False(t, res.Done())
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, []string{"A", "B", "C"}, stepNames(res.Remaining))
		assert.Empty(t, res.Addresses)
	})

	t.Run("partially run", func(t *testing.T) {
		registry := newMemRegistry()
		require.NoError(t, registry.SetAddress(ctx, "Zeta", 1, "0x02"))
		require.NoError(t, registry.SetAddress(ctx, "Alpha", 1, "0x01"))
		require.NoError(t, registry.SetProgress(ctx, 1, &domain.UpgradePlan{ChainID: 1, Steps: steps("C")}))

		res, err := usecase.NewShowRegistry(plans, registry).Run(ctx, 1)
		require.NoError(t, err)
		assert.True(t, res.Started)
		assert.False(t, res.Done())
		assert.Equal(t, []string{"C"}, stepNames(res.Remaining))
		assert.Equal(t, []domain.AddressRecord{{Name: "Alpha", Address: "0x01"}, {Name: "Zeta", Address: "0x02"}}, res.Addresses)
	})

	t.Run("done", func(t *testing.T) {
		registry := newMemRegistry()
		require.NoError(t, registry.SetProgress(ctx, 1, &domain.UpgradePlan{ChainID: 1, Steps: []domain.UpgradeStep{}}))

		res, err := usecase.NewShowRegistry(plans, registry).Run(ctx, 1)
		require.NoError(t, err)
		assert.True(t, res.Done())
	})

	t.Run("unknown chain", func(t *testing.T) {
		_, err := usecase.NewShowRegistry(plans, newMemRegistry()).Run(ctx, 5)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestResetProgress(t *testing.T) {
	ctx := context.Background()

	seeded := func(t *testing.T) *memRegistry {
		registry := newMemRegistry()
		require.NoError(t, registry.SetAddress(ctx, "LibX", 1, "0x01"))
		require.NoError(t, registry.SetProgress(ctx, 1, &domain.UpgradePlan{ChainID: 1, Steps: steps("B", "C")}))
		return registry
	}
	newReset := func(cfg *config.RuntimeConfig, registry usecase.ChainRegistry, locker usecase.RunLocker, prompter usecase.ConfirmPrompter) *usecase.ResetProgress {
		return usecase.NewResetProgress(cfg, registry, locker, prompter, logging.NewNopLogger())
	}

	t.Run("confirmed", func(t *testing.T) {
		registry := seeded(t)
		prompter := &MockConfirmPrompter{}
		prompter.On("Confirm", ctx, "Reset progress of chain 1 (2 steps still queued)?").Return(true, nil)

		res, err := newReset(&config.RuntimeConfig{}, registry, newMemLocker(), prompter).Run(ctx, usecase.ResetProgressParams{ChainID: 1})
		require.NoError(t, err)
		assert.True(t, res.Cleared)
		assert.Equal(t, 2, res.Discarded)
		assert.Nil(t, registry.remaining(1))

		addr, err := registry.GetAddress(ctx, "LibX", 1)
		require.NoError(t, err)
		assert.Equal(t, "0x01", addr, "addresses survive a reset")
		prompter.AssertExpectations(t)
	})

	t.Run("declined", func(t *testing.T) {
		registry := seeded(t)
		prompter := &MockConfirmPrompter{}
		prompter.On("Confirm", ctx, mock.Anything).Return(false, nil)

		res, err := newReset(&config.RuntimeConfig{}, registry, newMemLocker(), prompter).Run(ctx, usecase.ResetProgressParams{ChainID: 1})
		require.NoError(t, err)
		assert.True(t, res.Cancelled)
		assert.False(t, res.Cleared)
		assert.Equal(t, []string{"B", "C"}, registry.remaining(1))
	})

	t.Run("forced skips the prompt", func(t *testing.T) {
		registry := seeded(t)
		prompter := &MockConfirmPrompter{}

		res, err := newReset(&config.RuntimeConfig{}, registry, newMemLocker(), prompter).Run(ctx, usecase.ResetProgressParams{ChainID: 1, Force: true})
		require.NoError(t, err)
		assert.True(t, res.Cleared)
		prompter.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})

	t.Run("non-interactive skips the prompt", func(t *testing.T) {
		registry := seeded(t)
		prompter := &MockConfirmPrompter{}

		res, err := newReset(&config.RuntimeConfig{NonInteractive: true}, registry, newMemLocker(), prompter).Run(ctx, usecase.ResetProgressParams{ChainID: 1})
		require.NoError(t, err)
		assert.True(t, res.Cleared)
		prompter.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})

	t.Run("nothing to reset", func(t *testing.T) {
		res, err := newReset(&config.RuntimeConfig{}, newMemRegistry(), newMemLocker(), &MockConfirmPrompter{}).Run(ctx, usecase.ResetProgressParams{ChainID: 1})
		require.NoError(t, err)
		assert.False(t, res.Cleared)
		assert.Zero(t, res.Discarded)
	})

	t.Run("refuses while a run holds the lock", func(t *testing.T) {
		registry := seeded(t)
		locker := newMemLocker()
		release, err := locker.Acquire(ctx, 1)
		require.NoError(t, err)
		defer release()

		_, err = newReset(&config.RuntimeConfig{}, registry, locker, nil).Run(ctx, usecase.ResetProgressParams{ChainID: 1, Force: true})
		assert.True(t, errors.Is(err, domain.ErrRunInProgress))
		assert.Equal(t, []string{"B", "C"}, registry.remaining(1))
	})
}
