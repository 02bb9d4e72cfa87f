package domain

import (
	"time"
)

// StepKind selects the executor for an upgrade step
type StepKind string

const (
	// StepScript runs a forge script that deploys contracts
	StepScript StepKind = "script"
	// StepDiamondCut rewires the diamond routing table to a set of facets
	StepDiamondCut StepKind = "diamond-cut"
	// StepRecord records a known address without touching the chain
	StepRecord StepKind = "record"
)

// UpgradeStep is a single named unit of work in a plan
type UpgradeStep struct {
	Name string            `json:"name" yaml:"name"`
	Kind StepKind          `json:"kind" yaml:"kind"`
	Ref  string            `json:"ref,omitempty" yaml:"ref,omitempty"`
	Args []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env  map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// UpgradePlan is the ordered step queue of one chain
type UpgradePlan struct {
	ChainID uint64        `json:"chainId"`
	Steps   []UpgradeStep `json:"steps"`
}

// Empty reports whether no steps remain
func (p *UpgradePlan) Empty() bool {
	return p == nil || len(p.Steps) == 0
}

// Head returns the next step to execute
func (p *UpgradePlan) Head() *UpgradeStep {
	if p.Empty() {
		return nil
	}
	return &p.Steps[0]
}

// Advance returns a copy of the plan without its head step
func (p *UpgradePlan) Advance() *UpgradePlan {
	next := &UpgradePlan{ChainID: p.ChainID, Steps: []UpgradeStep{}}
	if len(p.Steps) > 1 {
		next.Steps = append(next.Steps, p.Steps[1:]...)
	}
	return next
}

// Clone returns a deep enough copy for the queue to be mutated independently
func (p *UpgradePlan) Clone() *UpgradePlan {
	steps := make([]UpgradeStep, len(p.Steps))
	copy(steps, p.Steps)
	return &UpgradePlan{ChainID: p.ChainID, Steps: steps}
}

// AddressRecord is an address produced by a step
type AddressRecord struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// StepOutcome is what a successful step hands back to the orchestrator
type StepOutcome struct {
	Addresses []AddressRecord
	// TxHash is set by steps that submit a single transaction
	TxHash string
}

// Progress is the durable remaining queue of a chain
type Progress struct {
	Remaining []UpgradeStep `json:"remaining"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ChainRecord is everything persisted for one chain
type ChainRecord struct {
	ChainID   uint64            `json:"chainId"`
	Addresses map[string]string `json:"addresses"`
	Progress  *Progress         `json:"progress,omitempty"`
}

// NewChainRecord returns an empty record for a chain
func NewChainRecord(chainID uint64) *ChainRecord {
	return &ChainRecord{
		ChainID:   chainID,
		Addresses: make(map[string]string),
	}
}
