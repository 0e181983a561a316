package ledger

import (
	"context"
	"sync"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

type accountKey struct {
	asset   domain.AssetID
	account domain.AccountID
}

// Memory is an in-process ledger for development and tests. It tracks
// balances and frozen flags and supports one-shot failure injection.
type Memory struct {
	mu       sync.Mutex
	balances map[accountKey]uint64
	frozen   map[accountKey]bool
	failNext error
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		balances: make(map[accountKey]uint64),
		frozen:   make(map[accountKey]bool),
	}
}

// FailNext makes the next ledger call return err.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Balance returns the current balance of an account.
func (m *Memory) Balance(asset domain.AssetID, account domain.AccountID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountKey{asset, account}]
}

// IsFrozen reports whether an account is frozen.
func (m *Memory) IsFrozen(asset domain.AssetID, account domain.AccountID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frozen[accountKey{asset, account}]
}

// SetBalance seeds an account balance for tests.
func (m *Memory) SetBalance(asset domain.AssetID, account domain.AccountID, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountKey{asset, account}] = amount
}

func (m *Memory) injected() error {
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	return nil
}

// Mint credits a destination account. A frozen destination rejects the credit.
func (m *Memory) Mint(_ context.Context, asset domain.AssetID, dest domain.AccountID, amount uint64, _ uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(); err != nil {
		return err
	}
	key := accountKey{asset, dest}
	if m.frozen[key] {
		return dErrors.New(dErrors.CodeAccountFrozen, "destination account is frozen")
	}
	m.balances[key] += amount
	return nil
}

// Burn debits a source account.
func (m *Memory) Burn(_ context.Context, asset domain.AssetID, source domain.AccountID, amount uint64, _ uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(); err != nil {
		return err
	}
	key := accountKey{asset, source}
	if m.frozen[key] {
		return dErrors.New(dErrors.CodeAccountFrozen, "source account is frozen")
	}
	if m.balances[key] < amount {
		return dErrors.New(dErrors.CodeInvalidAmount, "insufficient balance")
	}
	m.balances[key] -= amount
	return nil
}

// Freeze marks an account frozen.
func (m *Memory) Freeze(_ context.Context, asset domain.AssetID, account domain.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(); err != nil {
		return err
	}
	m.frozen[accountKey{asset, account}] = true
	return nil
}

// Thaw clears an account's frozen flag.
func (m *Memory) Thaw(_ context.Context, asset domain.AssetID, account domain.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(); err != nil {
		return err
	}
	delete(m.frozen, accountKey{asset, account})
	return nil
}

// TransferWithAuthority moves tokens under delegate authority. Frozen state
// on the source does not block the transfer; that is the point of the
// authority.
func (m *Memory) TransferWithAuthority(_ context.Context, asset domain.AssetID, source, dest domain.AccountID, amount uint64, _ uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(); err != nil {
		return err
	}
	srcKey := accountKey{asset, source}
	if m.balances[srcKey] < amount {
		return dErrors.New(dErrors.CodeInvalidAmount, "insufficient balance")
	}
	m.balances[srcKey] -= amount
	m.balances[accountKey{asset, dest}] += amount
	return nil
}
