package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// RegistryRenderer renders the recorded state of one chain
type RegistryRenderer struct {
	out io.Writer
}

// NewRegistryRenderer creates a new registry renderer
func NewRegistryRenderer(out io.Writer) *RegistryRenderer {
	return &RegistryRenderer{out: out}
}

// Render prints the progress line, the address book and the remaining queue
func (r *RegistryRenderer) Render(result *usecase.ShowRegistryResult) error {
	var state string
	switch {
	case !result.Started:
		state = faintStyle.Sprint("not started")
	case result.Done():
		state = okStyle.Sprint("complete")
	default:
		state = warnStyle.Sprintf("%d/%d steps done", max(result.Total-len(result.Remaining), 0), result.Total)
	}
	fmt.Fprintf(r.out, "%s %s\n\n", headerStyle.Sprintf("Chain %d", result.ChainID), state)

	fmt.Fprintln(r.out, sectionStyle.Sprint("Addresses"))
	if len(result.Addresses) == 0 {
		fmt.Fprintln(r.out, faintStyle.Sprint("  none recorded"))
	} else {
		t := newTable(2)
		for _, rec := range result.Addresses {
			t.AppendRow(table.Row{rec.Name, addressStyle.Sprint(rec.Address)})
		}
		fmt.Fprintln(r.out, t.Render())
	}

	if len(result.Remaining) == 0 {
		return nil
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, sectionStyle.Sprint("Remaining"))
	t := newTable(4)
	offset := max(result.Total-len(result.Remaining), 0)
	for i, step := range result.Remaining {
		target := step.Ref
		if len(step.Args) > 0 {
			target = strings.TrimSpace(target + " " + strings.Join(step.Args, ","))
		}
		t.AppendRow(table.Row{fmt.Sprintf("%d.", offset+i+1), step.Name, faintStyle.Sprint(step.Kind), target})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
