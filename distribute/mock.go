package distribute

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/solroute/feeroute-go/policy"
	"github.com/solroute/feeroute-go/position"
	"github.com/solroute/feeroute-go/progress"
)

// MockFeeSource is a FeeSource whose behavior is set per test via
// function fields. A nil field returns zero values.
type MockFeeSource struct {
	ClaimFn func(ctx context.Context, positionRef solana.PublicKey) (uint64, uint64, error)
}

func (m *MockFeeSource) Claim(ctx context.Context, positionRef solana.PublicKey) (uint64, uint64, error) {
	if m.ClaimFn == nil {
		return 0, 0, nil
	}
	return m.ClaimFn(ctx, positionRef)
}

// MockBalanceSource is a BalanceSource backed by a function field, with a
// map fallback for the common fixed-balance case.
type MockBalanceSource struct {
	LockedFn func(ctx context.Context, balanceRef solana.PublicKey, now uint64) (LockedBalance, error)
	Balances map[solana.PublicKey]LockedBalance
}

func (m *MockBalanceSource) Locked(ctx context.Context, balanceRef solana.PublicKey, now uint64) (LockedBalance, error) {
	if m.LockedFn != nil {
		return m.LockedFn(ctx, balanceRef, now)
	}
	return m.Balances[balanceRef], nil
}

// MockTransferSink records transfers in memory. Destinations listed in
// Missing do not exist until funded. Function fields override the default
// behavior.
type MockTransferSink struct {
	HasDestinationFn  func(ctx context.Context, dest solana.PublicKey) (bool, error)
	FundDestinationFn func(ctx context.Context, dest solana.PublicKey) (uint64, error)
	TransferFn        func(ctx context.Context, dest solana.PublicKey, lamports uint64) error

	Missing  map[solana.PublicKey]bool
	FailFor  map[solana.PublicKey]bool
	FundCost uint64

	mu        sync.Mutex
	transfers map[solana.PublicKey]uint64
	funded    []solana.PublicKey
}

func (m *MockTransferSink) HasDestination(ctx context.Context, dest solana.PublicKey) (bool, error) {
	if m.HasDestinationFn != nil {
		return m.HasDestinationFn(ctx, dest)
	}
	return !m.Missing[dest], nil
}

func (m *MockTransferSink) FundDestination(ctx context.Context, dest solana.PublicKey) (uint64, error) {
	if m.FundDestinationFn != nil {
		return m.FundDestinationFn(ctx, dest)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Missing, dest)
	m.funded = append(m.funded, dest)
	return m.FundCost, nil
}

func (m *MockTransferSink) Transfer(ctx context.Context, dest solana.PublicKey, lamports uint64) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, dest, lamports)
	}
	if m.FailFor[dest] {
		return errors.New("mock: transfer refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transfers == nil {
		m.transfers = make(map[solana.PublicKey]uint64)
	}
	m.transfers[dest] += lamports
	return nil
}

// Received returns the total transferred to a destination.
func (m *MockTransferSink) Received(dest solana.PublicKey) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transfers[dest]
}

// Funded returns the destinations created by FundDestination, in order.
func (m *MockTransferSink) Funded() []solana.PublicKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]solana.PublicKey, len(m.funded))
	copy(out, m.funded)
	return out
}

// MemStore is an in-memory StateStore. Records are copied on the way in
// and out so callers cannot mutate stored state.
type MemStore struct {
	mu         sync.Mutex
	policies   map[string]policy.Policy
	positions  map[string]position.Position
	progresses map[string]progress.Progress
}

var _ StateStore = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		policies:   make(map[string]policy.Policy),
		positions:  make(map[string]position.Position),
		progresses: make(map[string]progress.Progress),
	}
}

func (s *MemStore) GetPolicy(vaultSeed string) (*policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[vaultSeed]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) PutPolicy(p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.VaultSeed] = *p
	return nil
}

func (s *MemStore) GetPosition(vaultSeed string) (*position.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[vaultSeed]
	if !ok {
		return nil, position.ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) PutPosition(p *position.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[p.VaultSeed] = *p
	return nil
}

func (s *MemStore) GetProgress(vaultSeed string) (*progress.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progresses[vaultSeed]
	if !ok {
		return nil, progress.ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) PutProgress(p *progress.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progresses[p.VaultSeed] = *p
	return nil
}
