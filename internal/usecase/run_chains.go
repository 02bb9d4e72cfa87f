package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"golang.org/x/sync/errgroup"
)

// ChainStatus is the outcome of one chain in a multi-chain run
type ChainStatus string

const (
	ChainSucceeded   ChainStatus = "succeeded"
	ChainFailed      ChainStatus = "failed"
	ChainInterrupted ChainStatus = "interrupted"
	ChainSkipped     ChainStatus = "skipped"
)

// RunChains drives the orchestrator over several chains
type RunChains struct {
	cfg     *config.RuntimeConfig
	plans   PlanSource
	upgrade *RunUpgrade
	log     *slog.Logger
}

// NewRunChains creates a new multi-chain driver
func NewRunChains(cfg *config.RuntimeConfig, plans PlanSource, upgrade *RunUpgrade, log *slog.Logger) *RunChains {
	return &RunChains{
		cfg:     cfg,
		plans:   plans,
		upgrade: upgrade,
		log:     log.With("component", "RunChains"),
	}
}

// RunChainsParams selects chains and scheduling
type RunChainsParams struct {
	// ChainIDs to run; empty means every configured chain
	ChainIDs []uint64
	// Policy overrides the configured failure policy when set
	Policy   config.FailurePolicy
	Parallel bool
	// Concurrency caps parallel chains; 0 means unbounded
	Concurrency int
}

// ChainRunResult is the outcome of one chain
type ChainRunResult struct {
	ChainID uint64
	Status  ChainStatus
	Result  *RunResult
	Err     error
}

// RunChainsResult aggregates every chain
type RunChainsResult struct {
	Policy  config.FailurePolicy
	Chains  []*ChainRunResult
	Success bool
}

// Failed returns the chains that did not succeed
func (r *RunChainsResult) Failed() []*ChainRunResult {
	var failed []*ChainRunResult
	for _, c := range r.Chains {
		if c.Status != ChainSucceeded {
			failed = append(failed, c)
		}
	}
	return failed
}

// Run executes the orchestrator once per selected chain. Per-chain failures
// are reported in the result; the error is reserved for invalid parameters.
func (d *RunChains) Run(ctx context.Context, params RunChainsParams) (*RunChainsResult, error) {
	policy := params.Policy
	if policy == "" && d.cfg != nil {
		policy = d.cfg.FailurePolicy
	}
	if policy == "" {
		policy = config.FailureHalt
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("unknown failure policy %q (want %q or %q)", policy, config.FailureHalt, config.FailureContinue)
	}

	chainIDs := params.ChainIDs
	if len(chainIDs) == 0 {
		var err error
		chainIDs, err = d.plans.ListChains(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list chains: %w", err)
		}
	}
	// A chain named twice would race itself for the run lock
	chainIDs = lo.Uniq(chainIDs)
	sort.Slice(chainIDs, func(i, j int) bool { return chainIDs[i] < chainIDs[j] })

	d.log.Debug("running chains", "chains", chainIDs, "policy", policy, "parallel", params.Parallel)

	var results []*ChainRunResult
	if params.Parallel {
		results = d.runParallel(ctx, chainIDs, policy, params.Concurrency)
	} else {
		results = d.runSequential(ctx, chainIDs, policy)
	}

	out := &RunChainsResult{Policy: policy, Chains: results, Success: true}
	for _, r := range results {
		if r.Status != ChainSucceeded {
			out.Success = false
		}
	}
	return out, nil
}

func (d *RunChains) runSequential(ctx context.Context, chainIDs []uint64, policy config.FailurePolicy) []*ChainRunResult {
	results := make([]*ChainRunResult, 0, len(chainIDs))
	halted := false

	for _, chainID := range chainIDs {
		if halted {
			results = append(results, &ChainRunResult{ChainID: chainID, Status: ChainSkipped})
			continue
		}

		res := d.runOne(ctx, ctx, chainID)
		results = append(results, res)
		if res.Status != ChainSucceeded && policy == config.FailureHalt {
			d.log.Warn("halting after chain failure", "chain", chainID)
			halted = true
		}
	}
	return results
}

func (d *RunChains) runParallel(ctx context.Context, chainIDs []uint64, policy config.FailurePolicy, limit int) []*ChainRunResult {
	results := make([]*ChainRunResult, len(chainIDs))

	var (
		g    *errgroup.Group
		gctx = ctx
	)
	if policy == config.FailureHalt {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, chainID := range chainIDs {
		g.Go(func() error {
			if gctx.Err() != nil && ctx.Err() == nil {
				results[i] = &ChainRunResult{ChainID: chainID, Status: ChainSkipped}
				return nil
			}
			res := d.runOne(ctx, gctx, chainID)
			results[i] = res
			if res.Status == ChainFailed && policy == config.FailureHalt {
				return res.Err
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runOne runs a chain under runCtx. A cancellation that came from the group
// rather than the caller is reported as an interruption.
func (d *RunChains) runOne(parent, runCtx context.Context, chainID uint64) *ChainRunResult {
	res, err := d.upgrade.Run(runCtx, chainID)
	out := &ChainRunResult{ChainID: chainID, Result: res, Err: err}

	switch {
	case err == nil:
		out.Status = ChainSucceeded
	case errors.Is(err, context.Canceled) && parent.Err() == nil:
		out.Status = ChainInterrupted
	default:
		out.Status = ChainFailed
	}

	if err != nil {
		d.log.Error("chain run failed", "chain", chainID, "status", out.Status, "error", err)
	}
	return out
}
