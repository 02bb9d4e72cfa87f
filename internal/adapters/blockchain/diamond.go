package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// DiamondDialerAdapter opens RPC connections to diamonds
type DiamondDialerAdapter struct {
	privateKey string
	log        *slog.Logger
}

// NewDiamondDialerAdapter creates a new dialer
func NewDiamondDialerAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *DiamondDialerAdapter {
	return &DiamondDialerAdapter{
		privateKey: cfg.PrivateKey,
		log:        log.With("component", "DiamondClient"),
	}
}

// Dial connects and verifies that the endpoint serves the expected chain
func (d *DiamondDialerAdapter) Dial(ctx context.Context, rpcURL string, chainID uint64) (usecase.DiamondClient, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	networkChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if networkChainID.Uint64() != chainID {
		client.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", chainID, networkChainID.Uint64())
	}

	return &DiamondClientAdapter{
		client:     client,
		chainID:    networkChainID,
		privateKey: d.privateKey,
		binding:    NewDiamond(),
		log:        d.log.With("chain", chainID),
	}, nil
}

// DiamondClientAdapter implements DiamondClient over ethclient
type DiamondClientAdapter struct {
	client     *ethclient.Client
	chainID    *big.Int
	privateKey string
	binding    *Diamond
	log        *slog.Logger
}

// DiamondCut submits every cut in one transaction and waits for its receipt.
// A reverted receipt is an error: the diamond applied none of the cuts.
func (c *DiamondClientAdapter) DiamondCut(ctx context.Context, diamond common.Address, cuts []domain.FacetCut, init common.Address, calldata []byte) (common.Hash, error) {
	if len(cuts) == 0 {
		return common.Hash{}, fmt.Errorf("empty cut batch")
	}
	key, err := c.signer()
	if err != nil {
		return common.Hash{}, err
	}

	input, err := c.binding.TryPackDiamondCut(toBindingCuts(cuts), init, calldata)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack diamondCut: %w", err)
	}

	if err := c.requireCode(ctx, diamond); err != nil {
		return common.Hash{}, err
	}

	opts := bind.NewKeyedTransactor(key, c.chainID)
	opts.Context = ctx

	tx, err := c.binding.Instance(c.client, diamond).RawTransact(opts, input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send diamondCut: %w", err)
	}
	c.log.Debug("diamondCut sent", "diamond", diamond, "tx", tx.Hash(), "cuts", len(cuts))

	receipt, err := bind.WaitMined(ctx, c.client, tx.Hash())
	if err != nil {
		return tx.Hash(), fmt.Errorf("failed waiting for diamondCut %s: %w", tx.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), fmt.Errorf("diamondCut %s reverted in block %d", tx.Hash(), receipt.BlockNumber)
	}
	return tx.Hash(), nil
}

// RoutingTable reads every selector route through the loupe
func (c *DiamondClientAdapter) RoutingTable(ctx context.Context, diamond common.Address) (domain.RoutingTable, error) {
	if err := c.requireCode(ctx, diamond); err != nil {
		return nil, err
	}

	raw, err := c.call(ctx, diamond, c.binding.PackFacetAddresses())
	if err != nil {
		return nil, fmt.Errorf("facetAddresses: %w", err)
	}
	facets, err := c.binding.UnpackFacetAddresses(raw)
	if err != nil {
		return nil, fmt.Errorf("facetAddresses: %w", err)
	}

	table := make(domain.RoutingTable)
	for _, facet := range facets {
		raw, err := c.call(ctx, diamond, c.binding.PackFacetFunctionSelectors(facet))
		if err != nil {
			return nil, fmt.Errorf("facetFunctionSelectors(%s): %w", facet, err)
		}
		selectors, err := c.binding.UnpackFacetFunctionSelectors(raw)
		if err != nil {
			return nil, fmt.Errorf("facetFunctionSelectors(%s): %w", facet, err)
		}
		for _, sel := range selectors {
			table[domain.Selector(sel)] = facet
		}
	}
	return table, nil
}

// Close releases the RPC connection
func (c *DiamondClientAdapter) Close() {
	c.client.Close()
}

func (c *DiamondClientAdapter) call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	return c.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
}

func (c *DiamondClientAdapter) requireCode(ctx context.Context, addr common.Address) error {
	code, err := c.client.CodeAt(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("failed to check code at %s: %w", addr, err)
	}
	if len(code) == 0 {
		return fmt.Errorf("no contract deployed at %s", addr)
	}
	return nil
}

func (c *DiamondClientAdapter) signer() (*ecdsa.PrivateKey, error) {
	if c.privateKey == "" {
		return nil, domain.NewConfigurationError("private_key", "a signing key is required to submit diamond cuts (set CUTTER_PRIVATE_KEY)")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.privateKey, "0x"))
	if err != nil {
		return nil, &domain.ConfigurationError{Subject: "private_key", Reason: "invalid key", Err: err}
	}
	return key, nil
}

func toBindingCuts(cuts []domain.FacetCut) []IDiamondFacetCut {
	out := make([]IDiamondFacetCut, len(cuts))
	for i, cut := range cuts {
		selectors := make([][4]byte, len(cut.FunctionSelectors))
		for j, sel := range cut.FunctionSelectors {
			selectors[j] = sel
		}
		out[i] = IDiamondFacetCut{
			FacetAddress:      cut.FacetAddress,
			Action:            uint8(cut.Action),
			FunctionSelectors: selectors,
		}
	}
	return out
}

// Ensure the adapters implement the interfaces
var (
	_ usecase.DiamondDialer = (*DiamondDialerAdapter)(nil)
	_ usecase.DiamondClient = (*DiamondClientAdapter)(nil)
)
