package diamond

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/cutter/internal/domain"
)

// BuildCut turns a facet's signatures into a cut. Duplicate signatures
// collapse; an empty signature list is a misconfiguration.
func BuildCut(facetAddress common.Address, signatures []string, action domain.FacetCutAction) (domain.FacetCut, error) {
	return defaultCodec.BuildCut(facetAddress, signatures, action)
}

// BuildCut is the codec-bound variant of BuildCut.
func (c *Codec) BuildCut(facetAddress common.Address, signatures []string, action domain.FacetCutAction) (domain.FacetCut, error) {
	if err := checkCutAddress(facetAddress, action); err != nil {
		return domain.FacetCut{}, err
	}
	if len(signatures) == 0 {
		return domain.FacetCut{}, domain.NewConfigurationError(
			fmt.Sprintf("facet %s", facetAddress.Hex()), "exposes no operations")
	}

	selectors, err := c.SelectorsOf(signatures)
	if err != nil {
		return domain.FacetCut{}, err
	}

	return domain.FacetCut{
		FacetAddress:      facetAddress,
		Action:            action,
		FunctionSelectors: sortSelectors(lo.Uniq(selectors)),
	}, nil
}

// BuildBatch validates cuts destined for one diamondCut call. A selector may
// be added at most once per batch, even by cuts for the same facet.
func BuildBatch(cuts []domain.FacetCut) ([]domain.FacetCut, error) {
	claimed := make(map[domain.Selector]common.Address)

	for _, cut := range cuts {
		if err := checkCutAddress(cut.FacetAddress, cut.Action); err != nil {
			return nil, err
		}
		if len(cut.FunctionSelectors) == 0 {
			return nil, domain.NewConfigurationError(
				fmt.Sprintf("%s cut for %s", cut.Action, cut.FacetAddress.Hex()), "has no selectors")
		}
		if cut.Action != domain.CutAdd {
			continue
		}
		for _, sel := range cut.FunctionSelectors {
			if owner, ok := claimed[sel]; ok {
				return nil, &domain.CollisionError{
					Selector: sel,
					First:    owner.Hex(),
					Second:   cut.FacetAddress.Hex(),
				}
			}
			claimed[sel] = cut.FacetAddress
		}
	}

	return cuts, nil
}

// SelectorCount sums the selectors of every cut in a batch.
func SelectorCount(cuts []domain.FacetCut) int {
	return lo.SumBy(cuts, func(cut domain.FacetCut) int {
		return len(cut.FunctionSelectors)
	})
}

func checkCutAddress(addr common.Address, action domain.FacetCutAction) error {
	switch action {
	case domain.CutAdd, domain.CutReplace:
		if addr == (common.Address{}) {
			return domain.NewConfigurationError(action.String()+" cut", "facet address is zero")
		}
	case domain.CutRemove:
		if addr != (common.Address{}) {
			return domain.NewConfigurationError("remove cut", "facet address must be zero, got %s", addr.Hex())
		}
	default:
		return domain.NewConfigurationError("cut", "unknown action %d", uint8(action))
	}
	return nil
}

func sortSelectors(selectors []domain.Selector) []domain.Selector {
	sort.Slice(selectors, func(i, j int) bool {
		return bytes.Compare(selectors[i][:], selectors[j][:]) < 0
	})
	return selectors
}
