package diamond

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/cutter/internal/domain"
)

// DiamondCutSignature is the upgrade entry point. Removing it would leave the
// diamond unable to accept any further cut.
const DiamondCutSignature = "diamondCut((address,uint8,bytes4[])[],address,bytes)"

var diamondCutSelector = MustSelectorOf(DiamondCutSignature)

// FacetSpec is the desired routing of one facet.
type FacetSpec struct {
	Name       string
	Address    common.Address
	Signatures []string
}

func (f FacetSpec) label() string {
	if f.Name == "" {
		return f.Address.Hex()
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.Address.Hex())
}

// DiffOptions tunes Diff.
type DiffOptions struct {
	// Prune removes routed selectors that no desired facet exposes, except
	// diamondCut itself.
	Prune bool
	// Diamond is the proxy address. Selectors routed to it are immutable.
	Diamond common.Address
}

// Diff computes the smallest batch of cuts that routes every desired facet's
// selectors to that facet, given the live routing table.
func Diff(current domain.RoutingTable, desired []FacetSpec, opts DiffOptions) ([]domain.FacetCut, error) {
	return defaultCodec.Diff(current, desired, opts)
}

// Diff is the codec-bound variant of Diff.
func (c *Codec) Diff(current domain.RoutingTable, desired []FacetSpec, opts DiffOptions) ([]domain.FacetCut, error) {
	wanted := make(map[domain.Selector]FacetSpec)

	for _, facet := range desired {
		cut, err := c.BuildCut(facet.Address, facet.Signatures, domain.CutAdd)
		if err != nil {
			return nil, fmt.Errorf("facet %s: %w", facet.label(), err)
		}
		for _, sel := range cut.FunctionSelectors {
			if prev, ok := wanted[sel]; ok && prev.Address != facet.Address {
				return nil, &domain.CollisionError{Selector: sel, First: prev.label(), Second: facet.label()}
			}
			wanted[sel] = facet
		}
	}

	immutable := opts.Diamond != (common.Address{})
	adds := make(map[common.Address][]domain.Selector)
	replaces := make(map[common.Address][]domain.Selector)
	var removes []domain.Selector

	for sel, facet := range wanted {
		routed, ok := current[sel]
		switch {
		case !ok:
			adds[facet.Address] = append(adds[facet.Address], sel)
		case routed == facet.Address:
			// already routed
		case immutable && routed == opts.Diamond:
			return nil, domain.NewConfigurationError(
				fmt.Sprintf("selector %s", sel.Hex()), "is immutable on the diamond and cannot be routed to %s", facet.label())
		default:
			replaces[facet.Address] = append(replaces[facet.Address], sel)
		}
	}

	if opts.Prune {
		for sel, routed := range current {
			if _, ok := wanted[sel]; ok {
				continue
			}
			if immutable && routed == opts.Diamond {
				continue
			}
			if sel == diamondCutSelector {
				continue
			}
			removes = append(removes, sel)
		}
	}

	var cuts []domain.FacetCut
	cuts = appendGrouped(cuts, adds, domain.CutAdd)
	cuts = appendGrouped(cuts, replaces, domain.CutReplace)
	if len(removes) > 0 {
		cuts = append(cuts, domain.FacetCut{
			Action:            domain.CutRemove,
			FunctionSelectors: sortSelectors(removes),
		})
	}

	return BuildBatch(cuts)
}

func appendGrouped(cuts []domain.FacetCut, grouped map[common.Address][]domain.Selector, action domain.FacetCutAction) []domain.FacetCut {
	facets := lo.Keys(grouped)
	sort.Slice(facets, func(i, j int) bool {
		return bytes.Compare(facets[i][:], facets[j][:]) < 0
	})
	for _, facet := range facets {
		cuts = append(cuts, domain.FacetCut{
			FacetAddress:      facet,
			Action:            action,
			FunctionSelectors: sortSelectors(grouped[facet]),
		})
	}
	return cuts
}
