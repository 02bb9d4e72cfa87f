package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

var (
	chainColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	faintColor   = color.New(color.Faint)
)

// RunProgress renders orchestrator events. In line mode every event is a
// complete line prefixed with its chain, so parallel chains can interleave.
type RunProgress struct {
	mu       sync.Mutex
	out      io.Writer
	spinner  *SpinnerReporter
	lineMode bool
}

// NewRunProgress creates a run progress renderer
func NewRunProgress(out io.Writer, lineMode bool) *RunProgress {
	return &RunProgress{
		out:      out,
		spinner:  NewSpinnerReporter(out),
		lineMode: lineMode,
	}
}

// OnProgress renders a single event
func (p *RunProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefix := chainColor.Sprintf("[chain %d]", event.ChainID)

	switch event.Stage {
	case "plan_loaded":
		result, _ := event.Metadata.(*usecase.RunResult)
		switch {
		case event.Total == 0:
			p.println(fmt.Sprintf("%s nothing to do", prefix))
		case result != nil && result.Resumed:
			p.println(fmt.Sprintf("%s resuming, %d steps remaining", prefix, event.Total))
		default:
			p.println(fmt.Sprintf("%s %d steps queued", prefix, event.Total))
		}

	case "step_starting":
		label := fmt.Sprintf("%s [%d/%d] %s", prefix, event.Current, event.Total, event.Message)
		if p.lineMode {
			p.println(label + faintColor.Sprint(" ..."))
			return
		}
		p.spinner.Start(label)

	case "step_completed":
		p.spinner.Stop()
		line := fmt.Sprintf("%s %s [%d/%d] %s", prefix, successColor.Sprint("✓"), event.Current, event.Total, event.Message)
		report, _ := event.Metadata.(*usecase.StepReport)
		if report != nil {
			line += faintColor.Sprintf(" (%s)", report.Duration.Round(time.Millisecond))
		}
		p.println(line)
		if report != nil && report.Outcome != nil {
			for _, rec := range report.Outcome.Addresses {
				p.println(fmt.Sprintf("%s     %s %s", prefix, rec.Name, faintColor.Sprint(rec.Address)))
			}
			if report.Outcome.TxHash != "" {
				p.println(fmt.Sprintf("%s     tx %s", prefix, faintColor.Sprint(report.Outcome.TxHash)))
			}
		}

	case "step_failed":
		p.spinner.Stop()
		line := fmt.Sprintf("%s %s [%d/%d] %s", prefix, failColor.Sprint("✗"), event.Current, event.Total, event.Message)
		if report, ok := event.Metadata.(*usecase.StepReport); ok && report.Err != nil {
			line += ": " + failColor.Sprint(report.Err.Error())
		}
		p.println(line)

	case "run_completed":
		p.spinner.Stop()
		p.println(fmt.Sprintf("%s %s", prefix, successColor.Sprint("complete")))

	default:
		if p.lineMode {
			if event.Message != "" {
				p.println(fmt.Sprintf("%s %s", prefix, event.Message))
			}
			return
		}
		p.spinner.OnProgress(ctx, event)
	}
}

func (p *RunProgress) println(line string) {
	if p.lineMode {
		fmt.Fprintln(p.out, line)
		return
	}
	p.spinner.Println(color.New(color.Reset), line)
}

// Info prints an info message
func (p *RunProgress) Info(message string) {
	p.spinner.Info(message)
}

// Error prints an error message
func (p *RunProgress) Error(message string) {
	p.spinner.Error(message)
}

// Ensure RunProgress implements ProgressSink
var _ usecase.ProgressSink = (*RunProgress)(nil)
