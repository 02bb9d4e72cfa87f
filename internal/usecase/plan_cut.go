package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/domain/diamond"
)

// DefaultDiamondName is the registry name used when a diamond-cut step has no ref
const DefaultDiamondName = "Diamond"

// Step environment keys understood by diamond-cut steps
const (
	CutEnvPrune   = "prune"
	CutEnvExclude = "exclude"
	CutEnvInit    = "init"
	CutEnvInitSig = "init_sig"
)

// CutPlan is the batch a diamond-cut step would submit
type CutPlan struct {
	ChainID     uint64
	Step        string
	DiamondName string
	Diamond     common.Address
	Facets      []diamond.FacetSpec
	Current     domain.RoutingTable
	Cuts        []domain.FacetCut
	Init        common.Address
	Calldata    []byte
}

// Empty reports whether the diamond already routes as desired
func (p *CutPlan) Empty() bool {
	return len(p.Cuts) == 0
}

// CutPlanner resolves a diamond-cut step against the registry, the compiled
// artifacts and the live routing table.
type CutPlanner struct {
	cfg       *config.RuntimeConfig
	registry  ChainRegistry
	artifacts ArtifactReader
	dialer    DiamondDialer
	codec     *diamond.Codec
	log       *slog.Logger
}

// NewCutPlanner creates a new CutPlanner
func NewCutPlanner(
	cfg *config.RuntimeConfig,
	registry ChainRegistry,
	artifacts ArtifactReader,
	dialer DiamondDialer,
	log *slog.Logger,
) *CutPlanner {
	return &CutPlanner{
		cfg:       cfg,
		registry:  registry,
		artifacts: artifacts,
		dialer:    dialer,
		codec:     diamond.NewCodec(),
		log:       log.With("component", "CutPlanner"),
	}
}

// Plan computes the cut batch of a step. The returned client is open and must
// be closed by the caller.
func (p *CutPlanner) Plan(ctx context.Context, req StepRequest) (*CutPlan, DiamondClient, error) {
	step := req.Step
	if step.Kind != domain.StepDiamondCut {
		return nil, nil, domain.NewConfigurationError(step.Name, "step kind is %q, not %q", step.Kind, domain.StepDiamondCut)
	}
	if len(step.Args) == 0 {
		return nil, nil, domain.NewConfigurationError(step.Name, "diamond-cut step lists no facets")
	}

	plan := &CutPlan{
		ChainID:     req.ChainID,
		Step:        step.Name,
		DiamondName: step.Ref,
	}
	if plan.DiamondName == "" {
		plan.DiamondName = DefaultDiamondName
	}

	var err error
	if plan.Diamond, err = p.lookup(ctx, req.ChainID, plan.DiamondName); err != nil {
		return nil, nil, err
	}

	exclude := splitList(step.Env[CutEnvExclude])
	for _, name := range step.Args {
		addr, err := p.lookup(ctx, req.ChainID, name)
		if err != nil {
			return nil, nil, err
		}
		contractABI, err := p.artifacts.ReadABI(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("facet %s: %w", name, err)
		}
		plan.Facets = append(plan.Facets, diamond.FacetSpec{
			Name:       name,
			Address:    addr,
			Signatures: diamond.SignaturesFromABI(*contractABI, exclude...),
		})
	}

	if initName := step.Env[CutEnvInit]; initName != "" {
		if plan.Init, err = p.lookup(ctx, req.ChainID, initName); err != nil {
			return nil, nil, err
		}
		sig := step.Env[CutEnvInitSig]
		if sig == "" {
			sig = "init()"
		}
		sel, err := p.codec.SelectorOf(sig)
		if err != nil {
			return nil, nil, err
		}
		plan.Calldata = sel[:]
	}

	prune := false
	if raw, ok := step.Env[CutEnvPrune]; ok {
		if prune, err = strconv.ParseBool(raw); err != nil {
			return nil, nil, domain.NewConfigurationError(step.Name, "invalid %s value %q", CutEnvPrune, raw)
		}
	}

	rpcURL, err := ResolveRPCURL(p.cfg, req.ChainID, req.Chain)
	if err != nil {
		return nil, nil, err
	}
	client, err := p.dialer.Dial(ctx, rpcURL, req.ChainID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to chain %d: %w", req.ChainID, err)
	}

	plan.Current, err = client.RoutingTable(ctx, plan.Diamond)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to read routing table of %s: %w", plan.DiamondName, err)
	}

	plan.Cuts, err = p.codec.Diff(plan.Current, plan.Facets, diamond.DiffOptions{
		Prune:   prune,
		Diamond: plan.Diamond,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	p.log.Debug("cut planned", "chain", req.ChainID, "step", step.Name,
		"cuts", len(plan.Cuts), "selectors", diamond.SelectorCount(plan.Cuts))
	return plan, client, nil
}

// lookup resolves a registry name, suggesting close names when it is unknown
func (p *CutPlanner) lookup(ctx context.Context, chainID uint64, name string) (common.Address, error) {
	raw, err := p.registry.GetAddress(ctx, name, chainID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			if known, lerr := p.registry.ListAddresses(ctx, chainID); lerr == nil {
				nf.Suggestions = suggestNames(name, known)
			}
		}
		return common.Address{}, err
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%s: %w: %q", name, domain.ErrInvalidAddress, raw)
	}
	return common.HexToAddress(raw), nil
}

// suggestNames returns up to three recorded names that fuzzy-match name
func suggestNames(name string, known map[string]string) []string {
	names := make([]string, 0, len(known))
	for k := range known {
		names = append(names, k)
	}

	matches := fuzzy.Find(strings.ToLower(name), lowerAll(names))
	var out []string
	for _, m := range matches {
		out = append(out, names[m.Index])
		if len(out) == 3 {
			break
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ResolveRPCURL picks the chain's explicit rpc_url, then its foundry.toml endpoint
func ResolveRPCURL(cfg *config.RuntimeConfig, chainID uint64, chain *config.ChainConfig) (string, error) {
	if chain != nil && chain.RPCURL != "" {
		return chain.RPCURL, nil
	}
	if chain != nil && chain.Network != "" && cfg != nil {
		if url, ok := cfg.RPCEndpoints[chain.Network]; ok && url != "" {
			return url, nil
		}
		return "", domain.NewConfigurationError(fmt.Sprintf("chain %d", chainID),
			"network %q has no rpc endpoint in foundry.toml", chain.Network)
	}
	return "", domain.NewConfigurationError(fmt.Sprintf("chain %d", chainID), "neither rpc_url nor network is set")
}
