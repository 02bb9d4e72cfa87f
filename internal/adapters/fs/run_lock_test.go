package fs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/logging"
)

func TestRunLock(t *testing.T) {
	cfg := &config.RuntimeConfig{DataDir: t.TempDir()}
	locker := NewRunLockAdapter(cfg, logging.NewNopLogger())
	ctx := context.Background()

	release, err := locker.Acquire(ctx, 1)
	require.NoError(t, err)

	t.Run("second acquire on same chain fails fast", func(t *testing.T) {
		_, err := locker.Acquire(ctx, 1)
		assert.True(t, errors.Is(err, domain.ErrRunInProgress))
	})

	t.Run("other chains are independent", func(t *testing.T) {
		releaseOther, err := locker.Acquire(ctx, 2)
		require.NoError(t, err)
		releaseOther()
	})

	release()

	t.Run("released lock can be taken again", func(t *testing.T) {
		again, err := locker.Acquire(ctx, 1)
		require.NoError(t, err)
		again()
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := locker.Acquire(cctx, 3)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
