package progress

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

func TestRunProgress_LineMode(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	p := NewRunProgress(&buf, true)
	ctx := context.Background()

	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "plan_loaded", ChainID: 1337, Total: 2,
		Metadata: &usecase.RunResult{Resumed: true}})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "step_starting", ChainID: 1337, Current: 1, Total: 2, Message: "deployLib(X)", Spinner: true})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "step_completed", ChainID: 1337, Current: 1, Total: 2, Message: "deployLib(X)",
		Metadata: &usecase.StepReport{
			Duration: 1500 * time.Millisecond,
			Outcome:  &domain.StepOutcome{Addresses: []domain.AddressRecord{{Name: "LibX", Address: "0x01"}}},
		}})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "step_failed", ChainID: 1337, Current: 2, Total: 2, Message: "upgradeProxy(Z)",
		Metadata: &usecase.StepReport{Err: errors.New("reverted")}})

	want := "[chain 1337] resuming, 2 steps remaining\n" +
		"[chain 1337] [1/2] deployLib(X) ...\n" +
		"[chain 1337] ✓ [1/2] deployLib(X) (1.5s)\n" +
		"[chain 1337]     LibX 0x01\n" +
		"[chain 1337] ✗ [2/2] upgradeProxy(Z): reverted\n"
	assert.Equal(t, want, buf.String())
}

func TestRunProgress_CompletedAndEmpty(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	p := NewRunProgress(&buf, true)
	ctx := context.Background()

	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "plan_loaded", ChainID: 1, Total: 0})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "run_completed", ChainID: 1})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "reading", ChainID: 1, Message: "Reading routing table", Spinner: true})

	assert.Equal(t, "[chain 1] nothing to do\n[chain 1] complete\n[chain 1] Reading routing table\n", buf.String())
}
