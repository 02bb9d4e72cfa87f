package config

import (
	"time"

	"github.com/trebuchet-org/cutter/internal/domain"
)

// FailurePolicy decides what the multi-chain driver does after a chain fails
type FailurePolicy string

const (
	// FailureHalt stops scheduling further chains after the first failure
	FailureHalt FailurePolicy = "halt"
	// FailureContinue runs every chain regardless of failures elsewhere
	FailureContinue FailurePolicy = "continue"
)

// Valid reports whether the policy is known
func (p FailurePolicy) Valid() bool {
	return p == FailureHalt || p == FailureContinue
}

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string
	PlanFile    string

	// Execution settings
	FailurePolicy  FailurePolicy
	Parallel       bool
	StepTimeout    time.Duration // 0 disables the per-step timeout
	Timeout        time.Duration
	Debug          bool
	NonInteractive bool

	// PrivateKey signs diamondCut transactions (hex, optional 0x prefix)
	PrivateKey string

	// Resolved configurations
	RPCEndpoints map[string]string // from foundry.toml [rpc_endpoints]
	Plan         *PlanFile
}

// PlanFile is the parsed plan configuration (cutter.yaml)
type PlanFile struct {
	Chains map[uint64]*ChainConfig `yaml:"chains"`
}

// ChainConfig is the static configuration of one chain
type ChainConfig struct {
	ChainID uint64               `yaml:"-"`
	Network string               `yaml:"network,omitempty"`
	RPCURL  string               `yaml:"rpc_url,omitempty"`
	Steps   []domain.UpgradeStep `yaml:"steps"`
}
