package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/domain/diamond"
	"github.com/trebuchet-org/cutter/internal/logging"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

const ownershipFacetABI = `[
	{"type":"function","name":"owner","inputs":[],"outputs":[{"type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"transferOwnership","inputs":[{"name":"to","type":"address"}],"outputs":[],"stateMutability":"nonpayable"}
]`

func ownershipABI(t *testing.T) *abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(bytes.NewReader([]byte(ownershipFacetABI)))
	require.NoError(t, err)
	return &parsed
}

func TestComputeSelectors(t *testing.T) {
	ctx := context.Background()

	t.Run("signatures", func(t *testing.T) {
		res, err := usecase.NewComputeSelectors(&MockArtifactReader{}).Run(ctx, usecase.ComputeSelectorsParams{
			Signatures: []string{"diamondCut((address,uint8,bytes4[])[],address,bytes)", "facetAddresses()"},
		})
		require.NoError(t, err)
		require.Len(t, res.Entries, 2)
		assert.Equal(t, "0x1f931c1c", res.Entries[0].Selector.Hex())
		assert.Equal(t, "0x52ef6b2c", res.Entries[1].Selector.Hex())
	})

	t.Run("artifact", func(t *testing.T) {
		artifacts := &MockArtifactReader{}
		artifacts.On("ReadABI", ctx, "OwnershipFacet").Return(ownershipABI(t), nil)

		res, err := usecase.NewComputeSelectors(artifacts).Run(ctx, usecase.ComputeSelectorsParams{
			Artifact: "OwnershipFacet",
			Exclude:  []string{"transferOwnership(address)"},
		})
		require.NoError(t, err)
		require.Len(t, res.Entries, 1)
		assert.Equal(t, "owner()", res.Entries[0].Signature)
		assert.Equal(t, "0x8da5cb5b", res.Entries[0].Selector.Hex())
	})

	t.Run("malformed signature", func(t *testing.T) {
		_, err := usecase.NewComputeSelectors(&MockArtifactReader{}).Run(ctx, usecase.ComputeSelectorsParams{
			Signatures: []string{"transfer(address, uint256)"},
		})
		var cfgErr *domain.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("no input", func(t *testing.T) {
		_, err := usecase.NewComputeSelectors(&MockArtifactReader{}).Run(ctx, usecase.ComputeSelectorsParams{})
		assert.Error(t, err)
	})
}

func TestPreviewCut(t *testing.T) {
	ctx := context.Background()
	diamondAddr := common.HexToAddress("0x9999999999999999999999999999999999999999")
	facetAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")

	plans := newStubPlans(&config.ChainConfig{
		ChainID: 1337,
		RPCURL:  "http://127.0.0.1:8545",
		Steps: []domain.UpgradeStep{
			{Name: "deployOwnership", Kind: domain.StepScript, Ref: "script/Deploy.s.sol"},
			{Name: "cutOwnership", Kind: domain.StepDiamondCut, Args: []string{"OwnershipFacet"}},
		},
	})

	setup := func(t *testing.T, table domain.RoutingTable) (*usecase.PreviewCut, *fakeDiamond, *recordingSink) {
		registry := newMemRegistry()
		require.NoError(t, registry.SetAddress(ctx, "Diamond", 1337, diamondAddr.Hex()))
		require.NoError(t, registry.SetAddress(ctx, "OwnershipFacet", 1337, facetAddr.Hex()))

		artifacts := &MockArtifactReader{}
		artifacts.On("ReadABI", ctx, "OwnershipFacet").Return(ownershipABI(t), nil)

		dialer := &fakeDiamond{table: table}
		sink := &recordingSink{}
		planner := usecase.NewCutPlanner(&config.RuntimeConfig{}, registry, artifacts, dialer, logging.NewNopLogger())
		return usecase.NewPreviewCut(plans, planner, sink), dialer, sink
	}

	t.Run("computes the batch without submitting", func(t *testing.T) {
		uc, dialer, sink := setup(t, domain.RoutingTable{
			diamond.MustSelectorOf("owner()"): facetAddr,
		})

		plan, err := uc.Run(ctx, usecase.PreviewCutParams{ChainID: 1337, Step: "cutOwnership"})
		require.NoError(t, err)
		assert.Equal(t, "Diamond", plan.DiamondName)
		assert.Equal(t, diamondAddr, plan.Diamond)
		require.Len(t, plan.Cuts, 1)
		assert.Equal(t, domain.CutAdd, plan.Cuts[0].Action)
		assert.Equal(t, []domain.Selector{diamond.MustSelectorOf("transferOwnership(address)")}, plan.Cuts[0].FunctionSelectors)

		assert.Zero(t, dialer.cuts)
		assert.True(t, dialer.closed)
		assert.Equal(t, []string{"reading"}, sink.stages())
	})

	t.Run("up to date", func(t *testing.T) {
		uc, _, _ := setup(t, domain.RoutingTable{
			diamond.MustSelectorOf("owner()"):                    facetAddr,
			diamond.MustSelectorOf("transferOwnership(address)"): facetAddr,
		})

		plan, err := uc.Run(ctx, usecase.PreviewCutParams{ChainID: 1337, Step: "cutOwnership"})
		require.NoError(t, err)
		assert.True(t, plan.Empty())
	})

	t.Run("unknown step", func(t *testing.T) {
		uc, _, _ := setup(t, domain.RoutingTable{})

		_, err := uc.Run(ctx, usecase.PreviewCutParams{ChainID: 1337, Step: "cutOwner"})
		var nf *domain.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, []string{"cutOwnership"}, nf.Suggestions)
	})

	t.Run("script step", func(t *testing.T) {
		uc, _, _ := setup(t, domain.RoutingTable{})

		_, err := uc.Run(ctx, usecase.PreviewCutParams{ChainID: 1337, Step: "deployOwnership"})
		assert.ErrorContains(t, err, "only diamond-cut steps")
	})
}
