package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// RunLockAdapter implements RunLocker with an advisory lock file per chain.
// It excludes both other processes and other goroutines of this process.
type RunLockAdapter struct {
	dir string
	log *slog.Logger
}

// NewRunLockAdapter creates a new RunLockAdapter
func NewRunLockAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *RunLockAdapter {
	return &RunLockAdapter{
		dir: filepath.Join(cfg.DataDir, "registry"),
		log: log.With("component", "RunLock"),
	}
}

// Acquire takes the chain's lock without waiting
func (l *RunLockAdapter) Acquire(ctx context.Context, chainID uint64) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	path := filepath.Join(l.dir, strconv.FormatUint(chainID, 10)+".lock")
	lock := flock.New(path)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, domain.ErrRunInProgress
	}

	l.log.Debug("run lock acquired", "chain", chainID)
	return func() {
		if err := lock.Unlock(); err != nil {
			l.log.Warn("failed to release run lock", "chain", chainID, "error", err)
		}
	}, nil
}

// Ensure RunLockAdapter implements RunLocker
var _ usecase.RunLocker = (*RunLockAdapter)(nil)
