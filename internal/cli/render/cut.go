package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/diamond"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// CutRenderer renders a planned diamond cut and computed selectors
type CutRenderer struct {
	out io.Writer
}

// NewCutRenderer creates a new cut renderer
func NewCutRenderer(out io.Writer) *CutRenderer {
	return &CutRenderer{out: out}
}

// RenderPlan prints the batch a diamond-cut step would submit
func (r *CutRenderer) RenderPlan(plan *usecase.CutPlan) error {
	fmt.Fprintf(r.out, "%s %s %s\n", headerStyle.Sprint(plan.Step),
		plan.DiamondName, addressStyle.Sprint(plan.Diamond.Hex()))
	fmt.Fprintf(r.out, "%s\n\n", faintStyle.Sprintf("chain %d, %d selectors routed", plan.ChainID, len(plan.Current)))

	if plan.Empty() {
		fmt.Fprintln(r.out, FormatSuccess("Diamond already routes every selector as planned"))
		return nil
	}

	names := signatureIndex(plan.Facets)
	for _, cut := range plan.Cuts {
		target := plan.Diamond.Hex()
		if cut.Action != domain.CutRemove {
			target = facetLabel(plan.Facets, cut)
		}
		fmt.Fprintf(r.out, "%s %s\n", actionLabel(cut.Action), target)

		t := newTable(2)
		for _, sel := range cut.FunctionSelectors {
			t.AppendRow(table.Row{sel.Hex(), faintStyle.Sprint(names[sel])})
		}
		fmt.Fprintln(r.out, t.Render())
	}

	summary := fmt.Sprintf("%d cuts, %d selectors", len(plan.Cuts), diamond.SelectorCount(plan.Cuts))
	if plan.Init != (common.Address{}) {
		summary += fmt.Sprintf(", init %s", plan.Init.Hex())
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, faintStyle.Sprint(summary))
	return nil
}

// RenderSelectors prints signature to selector pairs
func (r *CutRenderer) RenderSelectors(result *usecase.ComputeSelectorsResult) error {
	if result.Artifact != "" {
		fmt.Fprintln(r.out, headerStyle.Sprint(result.Artifact))
	}
	t := newTable(2)
	for _, entry := range result.Entries {
		t.AppendRow(table.Row{entry.Selector.Hex(), entry.Signature})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

func actionLabel(action domain.FacetCutAction) string {
	label := strings.ToUpper(action.String())
	switch action {
	case domain.CutAdd:
		return okStyle.Sprintf("%-7s", label)
	case domain.CutReplace:
		return warnStyle.Sprintf("%-7s", label)
	default:
		return failStyle.Sprintf("%-7s", label)
	}
}

func facetLabel(facets []diamond.FacetSpec, cut domain.FacetCut) string {
	for _, f := range facets {
		if f.Address == cut.FacetAddress {
			return fmt.Sprintf("%s %s", f.Name, addressStyle.Sprint(f.Address.Hex()))
		}
	}
	return cut.FacetAddress.Hex()
}

// signatureIndex maps every selector of the desired facets to its signature
func signatureIndex(facets []diamond.FacetSpec) map[domain.Selector]string {
	out := make(map[domain.Selector]string)
	for _, f := range facets {
		for _, sig := range f.Signatures {
			if sel, err := diamond.SelectorOf(sig); err == nil {
				out[sel] = sig
			}
		}
	}
	return out
}
