package usecase_test

import (
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// memRegistry is an in-memory ChainRegistry
type memRegistry struct {
	mu        sync.Mutex
	addresses map[uint64]map[string]string
	progress  map[uint64]*domain.UpgradePlan

	failSetAddress  error
	failSetProgress error
}

func newMemRegistry() *memRegistry {
	return &memRegistry{
		addresses: make(map[uint64]map[string]string),
		progress:  make(map[uint64]*domain.UpgradePlan),
	}
}

func (r *memRegistry) GetAddress(_ context.Context, name string, chainID uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr, ok := r.addresses[chainID][name]
	if !ok {
		return "", &domain.NotFoundError{Kind: "address", Key: name, ChainID: chainID}
	}
	return addr, nil
}

func (r *memRegistry) SetAddress(_ context.Context, name string, chainID uint64, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetAddress != nil {
		return r.failSetAddress
	}
	if r.addresses[chainID] == nil {
		r.addresses[chainID] = make(map[string]string)
	}
	r.addresses[chainID][name] = address
	return nil
}

func (r *memRegistry) ListAddresses(_ context.Context, chainID uint64) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.addresses[chainID]))
	for k, v := range r.addresses[chainID] {
		out[k] = v
	}
	return out, nil
}

func (r *memRegistry) GetProgress(_ context.Context, chainID uint64) (*domain.UpgradePlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.progress[chainID]
	if !ok {
		return nil, nil
	}
	return plan.Clone(), nil
}

func (r *memRegistry) SetProgress(_ context.Context, chainID uint64, plan *domain.UpgradePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetProgress != nil {
		return r.failSetProgress
	}
	r.progress[chainID] = plan.Clone()
	return nil
}

func (r *memRegistry) ClearProgress(_ context.Context, chainID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.progress, chainID)
	return nil
}

// remaining returns the step names of the persisted queue, nil if never run
func (r *memRegistry) remaining(chainID uint64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.progress[chainID]
	if !ok {
		return nil
	}
	return stepNames(plan.Steps)
}

// stubPlans serves chain configs from memory
type stubPlans struct {
	chains map[uint64]*config.ChainConfig
}

func newStubPlans(chains ...*config.ChainConfig) *stubPlans {
	p := &stubPlans{chains: make(map[uint64]*config.ChainConfig)}
	for _, c := range chains {
		p.chains[c.ChainID] = c
	}
	return p
}

func (p *stubPlans) ChainConfig(_ context.Context, chainID uint64) (*config.ChainConfig, error) {
	c, ok := p.chains[chainID]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "chain", Key: "", ChainID: chainID}
	}
	return c, nil
}

func (p *stubPlans) LoadPlan(ctx context.Context, chainID uint64) (*domain.UpgradePlan, error) {
	c, err := p.ChainConfig(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return (&domain.UpgradePlan{ChainID: chainID, Steps: c.Steps}).Clone(), nil
}

func (p *stubPlans) ListChains(context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(p.chains))
	for id := range p.chains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// memLocker is an in-process RunLocker
type memLocker struct {
	mu   sync.Mutex
	held map[uint64]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[uint64]bool)}
}

func (l *memLocker) Acquire(_ context.Context, chainID uint64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[chainID] {
		return nil, domain.ErrRunInProgress
	}
	l.held[chainID] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, chainID)
	}, nil
}

// funcExecutor runs steps through fn and records what it was asked to run
type funcExecutor struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, req usecase.StepRequest) (*domain.StepOutcome, error)
}

func (e *funcExecutor) Execute(ctx context.Context, req usecase.StepRequest) (*domain.StepOutcome, error) {
	e.mu.Lock()
	e.calls = append(e.calls, req.Step.Name)
	e.mu.Unlock()
	if e.fn == nil {
		return &domain.StepOutcome{}, nil
	}
	return e.fn(ctx, req)
}

func (e *funcExecutor) called() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// recordingSink keeps every progress event
type recordingSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
}

func (s *recordingSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Info(string)  {}
func (s *recordingSink) Error(string) {}

func (s *recordingSink) stages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Stage
	}
	return out
}

// MockConfirmPrompter is a mock implementation of ConfirmPrompter
type MockConfirmPrompter struct {
	mock.Mock
}

func (m *MockConfirmPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	args := m.Called(ctx, message)
	return args.Bool(0), args.Error(1)
}

// MockArtifactReader is a mock implementation of ArtifactReader
type MockArtifactReader struct {
	mock.Mock
}

func (m *MockArtifactReader) ReadABI(ctx context.Context, name string) (*abi.ABI, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abi.ABI), args.Error(1)
}

// fakeDiamond serves a fixed routing table and counts submitted batches
type fakeDiamond struct {
	table  domain.RoutingTable
	cuts   int
	closed bool
}

func (d *fakeDiamond) Dial(context.Context, string, uint64) (usecase.DiamondClient, error) {
	return d, nil
}

func (d *fakeDiamond) DiamondCut(context.Context, common.Address, []domain.FacetCut, common.Address, []byte) (common.Hash, error) {
	d.cuts++
	return common.Hash{}, nil
}

func (d *fakeDiamond) RoutingTable(context.Context, common.Address) (domain.RoutingTable, error) {
	return d.table, nil
}

func (d *fakeDiamond) Close() { d.closed = true }

func steps(names ...string) []domain.UpgradeStep {
	out := make([]domain.UpgradeStep, len(names))
	for i, n := range names {
		out[i] = domain.UpgradeStep{Name: n, Kind: domain.StepScript, Ref: "script/" + n + ".s.sol"}
	}
	return out
}

func stepNames(s []domain.UpgradeStep) []string {
	out := make([]string, len(s))
	for i, step := range s {
		out[i] = step.Name
	}
	return out
}
