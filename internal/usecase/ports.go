package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
)

// ChainRegistry is the durable per-chain address book and progress store.
// Records of different chains are disjoint.
type ChainRegistry interface {
	GetAddress(ctx context.Context, name string, chainID uint64) (string, error)
	SetAddress(ctx context.Context, name string, chainID uint64, address string) error
	ListAddresses(ctx context.Context, chainID uint64) (map[string]string, error)

	// GetProgress returns nil, nil when the chain has never been run.
	GetProgress(ctx context.Context, chainID uint64) (*domain.UpgradePlan, error)
	SetProgress(ctx context.Context, chainID uint64, plan *domain.UpgradePlan) error
	ClearProgress(ctx context.Context, chainID uint64) error
}

// RunLocker serializes orchestrator runs per chain
type RunLocker interface {
	// Acquire returns domain.ErrRunInProgress if the chain is already locked.
	Acquire(ctx context.Context, chainID uint64) (release func(), err error)
}

// PlanSource provides the static plan configuration
type PlanSource interface {
	LoadPlan(ctx context.Context, chainID uint64) (*domain.UpgradePlan, error)
	ListChains(ctx context.Context) ([]uint64, error)
	ChainConfig(ctx context.Context, chainID uint64) (*config.ChainConfig, error)
}

// StepRequest is handed to a StepExecutor for a single step
type StepRequest struct {
	ChainID uint64
	Chain   *config.ChainConfig
	Step    domain.UpgradeStep
}

// StepExecutor runs one upgrade step as an isolated unit of work. A nil error
// is the success signal.
type StepExecutor interface {
	Execute(ctx context.Context, req StepRequest) (*domain.StepOutcome, error)
}

// DiamondClient talks to one deployed diamond on one chain
type DiamondClient interface {
	// DiamondCut applies every cut atomically. On error nothing changed.
	DiamondCut(ctx context.Context, diamond common.Address, cuts []domain.FacetCut, init common.Address, calldata []byte) (common.Hash, error)
	// RoutingTable reads the live selector routing through the loupe.
	RoutingTable(ctx context.Context, diamond common.Address) (domain.RoutingTable, error)
	Close()
}

// DiamondDialer opens a DiamondClient for a chain
type DiamondDialer interface {
	Dial(ctx context.Context, rpcURL string, chainID uint64) (DiamondClient, error)
}

// ArtifactReader loads compiled contract ABIs
type ArtifactReader interface {
	ReadABI(ctx context.Context, contractName string) (*abi.ABI, error)
}

// ScriptRunner runs a deployment script and returns its combined output
type ScriptRunner interface {
	RunScript(ctx context.Context, cfg ScriptRunConfig) (*ScriptRunResult, error)
}

// ScriptRunConfig describes a single script invocation
type ScriptRunConfig struct {
	Script string
	RPCURL string
	Env    map[string]string
	Debug  bool
}

// ScriptRunResult carries what the script printed
type ScriptRunResult struct {
	Output   string
	ExitCode int
}

// ConfirmPrompter asks the operator before destructive actions
type ConfirmPrompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	ChainID  uint64
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
