package progress

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// SpinnerReporter keeps one spinner line for the operation in flight
type SpinnerReporter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
}

// NewSpinnerReporter creates a spinner writing to out
func NewSpinnerReporter(out io.Writer) *SpinnerReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerReporter{
		spinner: s,
		out:     out,
	}
}

// Start shows the spinner with message, replacing any previous message
func (r *SpinnerReporter) Start(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spinner.Suffix = " " + message
	if !r.spinner.Active() {
		r.spinner.Start()
	}
}

// Stop clears the spinner line
func (r *SpinnerReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Println prints a line without tearing the spinner
func (r *SpinnerReporter) Println(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

// OnProgress starts or stops the spinner as the event asks
func (r *SpinnerReporter) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	if event.Spinner {
		r.Start(event.Message)
		return
	}
	r.Stop()
}

// Info prints an info message
func (r *SpinnerReporter) Info(message string) {
	r.Println(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerReporter) Error(message string) {
	r.Println(color.New(color.FgRed), message)
}

// Ensure SpinnerReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerReporter)(nil)
