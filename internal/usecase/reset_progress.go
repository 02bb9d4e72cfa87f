package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/cutter/internal/domain/config"
)

// ResetProgressParams contains parameters for resetting a chain's progress
type ResetProgressParams struct {
	ChainID uint64
	// Force skips the confirmation prompt
	Force bool
}

// ResetProgressResult contains the result of a reset
type ResetProgressResult struct {
	ChainID   uint64
	Cleared   bool
	Cancelled bool
	// Discarded is the number of steps that were still queued
	Discarded int
}

// ResetProgress clears the persisted queue so the full plan runs again.
// Recorded addresses are kept.
type ResetProgress struct {
	cfg      *config.RuntimeConfig
	registry ChainRegistry
	locker   RunLocker
	prompter ConfirmPrompter
	log      *slog.Logger
}

// NewResetProgress creates a new ResetProgress use case
func NewResetProgress(
	cfg *config.RuntimeConfig,
	registry ChainRegistry,
	locker RunLocker,
	prompter ConfirmPrompter,
	log *slog.Logger,
) *ResetProgress {
	return &ResetProgress{
		cfg:      cfg,
		registry: registry,
		locker:   locker,
		prompter: prompter,
		log:      log.With("component", "ResetProgress"),
	}
}

// Run executes the reset progress use case
func (uc *ResetProgress) Run(ctx context.Context, params ResetProgressParams) (*ResetProgressResult, error) {
	result := &ResetProgressResult{ChainID: params.ChainID}

	current, err := uc.registry.GetProgress(ctx, params.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	if current == nil {
		return result, nil
	}
	result.Discarded = len(current.Steps)

	if !params.Force && !uc.cfg.NonInteractive {
		ok, err := uc.prompter.Confirm(ctx, fmt.Sprintf(
			"Reset progress of chain %d (%d steps still queued)?", params.ChainID, result.Discarded))
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Cancelled = true
			return result, nil
		}
	}

	release, err := uc.locker.Acquire(ctx, params.ChainID)
	if err != nil {
		return nil, fmt.Errorf("chain %d: %w", params.ChainID, err)
	}
	defer release()

	if err := uc.registry.ClearProgress(ctx, params.ChainID); err != nil {
		return nil, fmt.Errorf("failed to clear progress: %w", err)
	}

	uc.log.Debug("progress cleared", "chain", params.ChainID, "discarded", result.Discarded)
	result.Cleared = true
	return result, nil
}
