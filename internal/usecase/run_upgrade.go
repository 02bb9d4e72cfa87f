package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
)

// RunState is the orchestrator state of a single invocation
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
)

// RunUpgrade executes the upgrade plan of one chain, persisting the remaining
// queue after every successful step so a failed run resumes at the failed step.
type RunUpgrade struct {
	cfg      *config.RuntimeConfig
	plans    PlanSource
	registry ChainRegistry
	executor StepExecutor
	locker   RunLocker
	progress ProgressSink
	log      *slog.Logger
}

// NewRunUpgrade creates a new run upgrade use case
func NewRunUpgrade(
	cfg *config.RuntimeConfig,
	plans PlanSource,
	registry ChainRegistry,
	executor StepExecutor,
	locker RunLocker,
	progress ProgressSink,
	log *slog.Logger,
) *RunUpgrade {
	return &RunUpgrade{
		cfg:      cfg,
		plans:    plans,
		registry: registry,
		executor: executor,
		locker:   locker,
		progress: progress,
		log:      log.With("component", "RunUpgrade"),
	}
}

// StepReport is the result of executing a single step
type StepReport struct {
	Step     domain.UpgradeStep
	Index    int
	Outcome  *domain.StepOutcome
	Duration time.Duration
	Err      error
}

// RunResult contains the result of one orchestrator invocation
type RunResult struct {
	ChainID   uint64
	State     RunState
	Resumed   bool
	Total     int
	Executed  []*StepReport
	Failed    *StepReport
	Remaining []domain.UpgradeStep
}

// LoadPlan returns the static plan of a chain
func (o *RunUpgrade) LoadPlan(ctx context.Context, chainID uint64) (*domain.UpgradePlan, error) {
	return o.plans.LoadPlan(ctx, chainID)
}

// ResumeState returns the persisted remaining queue, or the full plan if the
// chain has never been run. The bool reports whether the queue was resumed.
func (o *RunUpgrade) ResumeState(ctx context.Context, chainID uint64) (*domain.UpgradePlan, bool, error) {
	persisted, err := o.registry.GetProgress(ctx, chainID)
	if err != nil {
		return nil, false, asPersistenceError("read progress", chainID, err)
	}
	if persisted != nil {
		return persisted, true, nil
	}

	plan, err := o.LoadPlan(ctx, chainID)
	if err != nil {
		return nil, false, err
	}
	return plan.Clone(), false, nil
}

// Run executes the remaining queue of a chain until it is empty or a step fails
func (o *RunUpgrade) Run(ctx context.Context, chainID uint64) (*RunResult, error) {
	result := &RunResult{ChainID: chainID, State: RunIdle}
	log := o.log.With("chain", chainID)

	chain, err := o.plans.ChainConfig(ctx, chainID)
	if err != nil {
		result.State = RunFailed
		return result, err
	}

	release, err := o.locker.Acquire(ctx, chainID)
	if err != nil {
		result.State = RunFailed
		return result, fmt.Errorf("chain %d: %w", chainID, err)
	}
	defer release()

	queue, resumed, err := o.ResumeState(ctx, chainID)
	if err != nil {
		result.State = RunFailed
		return result, err
	}

	result.State = RunRunning
	result.Resumed = resumed
	result.Total = len(queue.Steps)
	log.Debug("plan loaded", "remaining", len(queue.Steps), "resumed", resumed)

	o.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "plan_loaded",
		ChainID:  chainID,
		Total:    result.Total,
		Metadata: result,
	})

	for index := 1; !queue.Empty(); index++ {
		step := *queue.Head()

		// An interrupted run must not advance past the head step
		if err := ctx.Err(); err != nil {
			return o.fail(ctx, result, queue, &StepReport{Step: step, Index: index, Err: err})
		}

		o.progress.OnProgress(ctx, ProgressEvent{
			Stage:    "step_starting",
			ChainID:  chainID,
			Current:  index,
			Total:    result.Total,
			Message:  step.Name,
			Spinner:  true,
			Metadata: step,
		})

		report := o.execute(ctx, chainID, chain, step, index)
		if report.Err != nil {
			return o.fail(ctx, result, queue, report)
		}

		// Addresses first, then the queue, so a resumed step never misses them
		for _, rec := range report.Outcome.Addresses {
			if err := o.registry.SetAddress(ctx, rec.Name, chainID, rec.Address); err != nil {
				return o.abort(result, queue, asPersistenceError("write address", chainID, err))
			}
			log.Debug("address recorded", "name", rec.Name, "address", rec.Address)
		}

		next := queue.Advance()
		if err := o.registry.SetProgress(ctx, chainID, next); err != nil {
			return o.abort(result, queue, asPersistenceError("write progress", chainID, err))
		}
		queue = next

		result.Executed = append(result.Executed, report)
		log.Debug("step completed", "step", step.Name, "duration", report.Duration)
		o.progress.OnProgress(ctx, ProgressEvent{
			Stage:    "step_completed",
			ChainID:  chainID,
			Current:  index,
			Total:    result.Total,
			Message:  step.Name,
			Metadata: report,
		})
	}

	result.State = RunSucceeded
	result.Remaining = []domain.UpgradeStep{}
	o.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "run_completed",
		ChainID:  chainID,
		Metadata: result,
	})

	return result, nil
}

// execute runs a single step, bounded by the configured step timeout
func (o *RunUpgrade) execute(ctx context.Context, chainID uint64, chain *config.ChainConfig, step domain.UpgradeStep, index int) *StepReport {
	stepCtx := ctx
	if o.cfg != nil && o.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, o.cfg.StepTimeout)
		defer cancel()
	}

	start := time.Now()
	outcome, err := o.executor.Execute(stepCtx, StepRequest{
		ChainID: chainID,
		Chain:   chain,
		Step:    step,
	})
	report := &StepReport{
		Step:     step,
		Index:    index,
		Outcome:  outcome,
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", o.cfg.StepTimeout, err)
		}
		report.Err = err
		return report
	}

	if report.Outcome == nil {
		report.Outcome = &domain.StepOutcome{}
	}
	return report
}

// fail stops the run on a step failure. The persisted queue is left as it was
// so the failed step is the head on the next run.
func (o *RunUpgrade) fail(ctx context.Context, result *RunResult, queue *domain.UpgradePlan, report *StepReport) (*RunResult, error) {
	err := &domain.StepExecutionError{
		ChainID: result.ChainID,
		Step:    report.Step.Name,
		Err:     report.Err,
	}
	report.Err = err

	result.State = RunFailed
	result.Failed = report
	result.Remaining = queue.Steps

	o.log.Error("step failed", "chain", result.ChainID, "step", report.Step.Name, "error", report.Err)
	o.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "step_failed",
		ChainID:  result.ChainID,
		Current:  report.Index,
		Total:    result.Total,
		Message:  report.Step.Name,
		Metadata: report,
	})

	return result, err
}

// abort stops the run because durable state could not be written
func (o *RunUpgrade) abort(result *RunResult, queue *domain.UpgradePlan, err error) (*RunResult, error) {
	result.State = RunFailed
	result.Remaining = queue.Steps
	o.log.Error("registry write failed, aborting", "chain", result.ChainID, "error", err)
	return result, err
}

func asPersistenceError(op string, chainID uint64, err error) error {
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &domain.PersistenceError{Op: op, ChainID: chainID, Err: err}
}
