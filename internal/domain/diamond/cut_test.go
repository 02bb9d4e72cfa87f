package diamond

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/cutter/internal/domain"
)

var (
	facetA  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	facetB  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	facetA2 = common.HexToAddress("0x3333333333333333333333333333333333333333")
	proxy   = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

func TestBuildCut(t *testing.T) {
	t.Run("collapses duplicate signatures", func(t *testing.T) {
		cut, err := BuildCut(facetA, []string{
			"transfer(address,uint256)",
			"balanceOf(address)",
			"transfer(address,uint256)",
		}, domain.CutAdd)
		require.NoError(t, err)

		assert.Equal(t, facetA, cut.FacetAddress)
		assert.Equal(t, domain.CutAdd, cut.Action)
		assert.ElementsMatch(t, []domain.Selector{
			MustSelectorOf("transfer(address,uint256)"),
			MustSelectorOf("balanceOf(address)"),
		}, cut.FunctionSelectors)
	})

	t.Run("zero facet address", func(t *testing.T) {
		_, err := BuildCut(common.Address{}, []string{"owner()"}, domain.CutAdd)
		var cfgErr *domain.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})

	t.Run("empty operation list", func(t *testing.T) {
		_, err := BuildCut(facetA, nil, domain.CutAdd)
		var cfgErr *domain.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Contains(t, err.Error(), "exposes no operations")
	})

	t.Run("malformed signature", func(t *testing.T) {
		_, err := BuildCut(facetA, []string{"owner()", "transfer(address, uint256)"}, domain.CutAdd)
		var cfgErr *domain.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})

	t.Run("remove requires zero address", func(t *testing.T) {
		_, err := BuildCut(facetA, []string{"owner()"}, domain.CutRemove)
		require.Error(t, err)

		cut, err := BuildCut(common.Address{}, []string{"owner()"}, domain.CutRemove)
		require.NoError(t, err)
		assert.Equal(t, domain.CutRemove, cut.Action)
	})
}

func TestBuildBatch_Collision(t *testing.T) {
	cutA, err := BuildCut(facetA, []string{"transfer(address,uint256)", "owner()"}, domain.CutAdd)
	require.NoError(t, err)
	cutB, err := BuildCut(facetB, []string{"transfer(address,uint256)"}, domain.CutAdd)
	require.NoError(t, err)

	batch, err := BuildBatch([]domain.FacetCut{cutA, cutB})
	require.Error(t, err)
	assert.Nil(t, batch)

	var collision *domain.CollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, MustSelectorOf("transfer(address,uint256)"), collision.Selector)
	assert.Equal(t, facetA.Hex(), collision.First)
	assert.Equal(t, facetB.Hex(), collision.Second)

	t.Run("same facet added twice", func(t *testing.T) {
		first, err := BuildCut(facetA, []string{"transfer(address,uint256)"}, domain.CutAdd)
		require.NoError(t, err)
		second, err := BuildCut(facetA, []string{"balanceOf(address)", "transfer(address,uint256)"}, domain.CutAdd)
		require.NoError(t, err)

		_, err = BuildBatch([]domain.FacetCut{first, second})
		var collision *domain.CollisionError
		require.True(t, errors.As(err, &collision))
		assert.Equal(t, MustSelectorOf("transfer(address,uint256)"), collision.Selector)
		assert.Equal(t, facetA.Hex(), collision.First)
		assert.Equal(t, facetA.Hex(), collision.Second)
	})

	t.Run("duplicate selector inside one cut", func(t *testing.T) {
		transfer := MustSelectorOf("transfer(address,uint256)")
		_, err := BuildBatch([]domain.FacetCut{{FacetAddress: facetA, Action: domain.CutAdd,
			FunctionSelectors: []domain.Selector{transfer, transfer}}})
		var collision *domain.CollisionError
		assert.True(t, errors.As(err, &collision))
	})
}

func TestBuildBatch_Disjoint(t *testing.T) {
	cutA, err := BuildCut(facetA, []string{"transfer(address,uint256)", "balanceOf(address)"}, domain.CutAdd)
	require.NoError(t, err)
	cutB, err := BuildCut(facetB, []string{"owner()", "transferOwnership(address)", "renounceOwnership()"}, domain.CutAdd)
	require.NoError(t, err)

	batch, err := BuildBatch([]domain.FacetCut{cutA, cutB})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, 5, SelectorCount(batch))
}

func TestBuildBatch_ReplaceDoesNotCollide(t *testing.T) {
	add, err := BuildCut(facetA, []string{"owner()"}, domain.CutAdd)
	require.NoError(t, err)
	replace, err := BuildCut(facetB, []string{"owner()"}, domain.CutReplace)
	require.NoError(t, err)

	_, err = BuildBatch([]domain.FacetCut{add, replace})
	assert.NoError(t, err)
}

func TestBuildBatch_RejectsMalformedCuts(t *testing.T) {
	_, err := BuildBatch([]domain.FacetCut{{FacetAddress: facetA, Action: domain.CutRemove,
		FunctionSelectors: []domain.Selector{MustSelectorOf("owner()")}}})
	assert.Error(t, err)

	_, err = BuildBatch([]domain.FacetCut{{FacetAddress: facetA, Action: domain.CutAdd}})
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	transfer := MustSelectorOf("transfer(address,uint256)")
	balance := MustSelectorOf("balanceOf(address)")
	owner := MustSelectorOf("owner()")
	cutSel := MustSelectorOf("diamondCut((address,uint8,bytes4[])[],address,bytes)")

	t.Run("fresh diamond adds everything", func(t *testing.T) {
		cuts, err := Diff(domain.RoutingTable{}, []FacetSpec{
			{Name: "Token", Address: facetA, Signatures: []string{"transfer(address,uint256)", "balanceOf(address)"}},
			{Name: "Ownership", Address: facetB, Signatures: []string{"owner()"}},
		}, DiffOptions{})
		require.NoError(t, err)
		require.Len(t, cuts, 2)
		assert.Equal(t, domain.CutAdd, cuts[0].Action)
		assert.Equal(t, facetA, cuts[0].FacetAddress)
		assert.Equal(t, facetB, cuts[1].FacetAddress)
		assert.Equal(t, 3, SelectorCount(cuts))
	})

	t.Run("upgrade replaces routed and adds new", func(t *testing.T) {
		current := domain.RoutingTable{transfer: facetA, owner: facetB}
		cuts, err := Diff(current, []FacetSpec{
			{Name: "Token", Address: facetA2, Signatures: []string{"transfer(address,uint256)", "balanceOf(address)"}},
			{Name: "Ownership", Address: facetB, Signatures: []string{"owner()"}},
		}, DiffOptions{})
		require.NoError(t, err)
		require.Len(t, cuts, 2)

		assert.Equal(t, domain.FacetCut{FacetAddress: facetA2, Action: domain.CutAdd,
			FunctionSelectors: []domain.Selector{balance}}, cuts[0])
		assert.Equal(t, domain.FacetCut{FacetAddress: facetA2, Action: domain.CutReplace,
			FunctionSelectors: []domain.Selector{transfer}}, cuts[1])
	})

	t.Run("nothing to do", func(t *testing.T) {
		current := domain.RoutingTable{transfer: facetA}
		cuts, err := Diff(current, []FacetSpec{
			{Address: facetA, Signatures: []string{"transfer(address,uint256)"}},
		}, DiffOptions{})
		require.NoError(t, err)
		assert.Empty(t, cuts)
	})

	t.Run("prune removes stale but keeps immutable", func(t *testing.T) {
		current := domain.RoutingTable{transfer: facetA, balance: facetA, cutSel: proxy}
		cuts, err := Diff(current, []FacetSpec{
			{Address: facetA, Signatures: []string{"transfer(address,uint256)"}},
		}, DiffOptions{Prune: true, Diamond: proxy})
		require.NoError(t, err)
		require.Len(t, cuts, 1)
		assert.Equal(t, domain.CutRemove, cuts[0].Action)
		assert.Equal(t, common.Address{}, cuts[0].FacetAddress)
		assert.Equal(t, []domain.Selector{balance}, cuts[0].FunctionSelectors)
	})

	t.Run("prune keeps diamondCut routed to a facet", func(t *testing.T) {
		cutFacet := common.HexToAddress("0x4444444444444444444444444444444444444444")
		current := domain.RoutingTable{transfer: facetA, balance: facetA, cutSel: cutFacet}
		cuts, err := Diff(current, []FacetSpec{
			{Name: "Token", Address: facetA, Signatures: []string{"transfer(address,uint256)"}},
		}, DiffOptions{Prune: true, Diamond: proxy})
		require.NoError(t, err)
		require.Len(t, cuts, 1)
		assert.Equal(t, []domain.Selector{balance}, cuts[0].FunctionSelectors)
		assert.Equal(t, cutSel, diamondCutSelector)
	})

	t.Run("without prune stale selectors stay", func(t *testing.T) {
		current := domain.RoutingTable{transfer: facetA, balance: facetA}
		cuts, err := Diff(current, []FacetSpec{
			{Address: facetA, Signatures: []string{"transfer(address,uint256)"}},
		}, DiffOptions{})
		require.NoError(t, err)
		assert.Empty(t, cuts)
	})

	t.Run("immutable selector cannot be replaced", func(t *testing.T) {
		current := domain.RoutingTable{cutSel: proxy}
		_, err := Diff(current, []FacetSpec{
			{Address: facetA, Signatures: []string{"diamondCut((address,uint8,bytes4[])[],address,bytes)"}},
		}, DiffOptions{Diamond: proxy})
		var cfgErr *domain.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})

	t.Run("two desired facets claim one selector", func(t *testing.T) {
		_, err := Diff(domain.RoutingTable{}, []FacetSpec{
			{Name: "A", Address: facetA, Signatures: []string{"transfer(address,uint256)"}},
			{Name: "B", Address: facetB, Signatures: []string{"transfer(address,uint256)"}},
		}, DiffOptions{})
		var collision *domain.CollisionError
		require.True(t, errors.As(err, &collision))
		assert.Contains(t, collision.First, "A")
		assert.Contains(t, collision.Second, "B")
	})
}
