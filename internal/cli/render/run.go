package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RunRenderer renders the outcome of a multi-chain run
type RunRenderer struct {
	out io.Writer
}

// NewRunRenderer creates a new run renderer
func NewRunRenderer(out io.Writer) *RunRenderer {
	return &RunRenderer{out: out}
}

// RenderSummary prints one row per chain followed by the overall verdict
func (r *RunRenderer) RenderSummary(result *usecase.RunChainsResult) error {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("Summary"), faintStyle.Sprintf("(failure policy: %s)", result.Policy))

	t := newTable(5)
	t.AppendHeader(table.Row{"CHAIN", "STATUS", "EXECUTED", "REMAINING", "DETAIL"})
	for _, chain := range result.Chains {
		executed, remaining := "-", "-"
		if chain.Result != nil && chain.Status != usecase.ChainSkipped {
			executed = strconv.Itoa(len(chain.Result.Executed))
			remaining = strconv.Itoa(len(chain.Result.Remaining))
		}
		t.AppendRow(table.Row{chain.ChainID, statusLabel(chain.Status), executed, remaining, detail(chain)})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)

	failed := len(result.Failed())
	if failed == 0 {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("All %d chains up to date", len(result.Chains))))
		return nil
	}
	fmt.Fprintln(r.out, FormatError(fmt.Sprintf("%d of %d chains did not complete; rerun to resume", failed, len(result.Chains))))
	return nil
}

func statusLabel(status usecase.ChainStatus) string {
	label := cases.Title(language.English).String(string(status))
	switch status {
	case usecase.ChainSucceeded:
		return okStyle.Sprint(label)
	case usecase.ChainFailed:
		return failStyle.Sprint(label)
	case usecase.ChainInterrupted:
		return warnStyle.Sprint(label)
	default:
		return faintStyle.Sprint(label)
	}
}

func detail(chain *usecase.ChainRunResult) string {
	if chain.Err == nil {
		return ""
	}
	var stepErr *domain.StepExecutionError
	if errors.As(chain.Err, &stepErr) {
		return fmt.Sprintf("step %q: %v", stepErr.Step, stepErr.Err)
	}
	return chain.Err.Error()
}
