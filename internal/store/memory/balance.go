// Package memory provides in-process implementations of the balance and like
// stores. They back local development and tests; production deployments use
// the Redis-backed stores instead.
package memory

import (
	"context"
	"sync"
)

// BalanceStore is an in-memory balance store. Accounts are seeded with a
// configured starting balance on first touch, matching the product rule that
// new accounts receive free tokens.
type BalanceStore struct {
	mu              sync.Mutex
	balances        map[string]int64
	startingBalance int64
}

// NewBalanceStore creates a new in-memory balance store.
func NewBalanceStore(startingBalance int64) *BalanceStore {
	return &BalanceStore{
		balances:        make(map[string]int64),
		startingBalance: startingBalance,
	}
}

// balanceLocked returns the balance for an account, seeding it on first touch.
// Callers must hold s.mu.
func (s *BalanceStore) balanceLocked(accountID string) int64 {
	balance, ok := s.balances[accountID]
	if !ok {
		balance = s.startingBalance
		s.balances[accountID] = balance
	}
	return balance
}

// Balance returns the current balance for an account.
func (s *BalanceStore) Balance(_ context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balanceLocked(accountID), nil
}

// TryDecrement atomically decrements the balance by amount if available.
// The mutex makes the check and the decrement a single indivisible operation.
func (s *BalanceStore) TryDecrement(_ context.Context, accountID string, amount int64) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balanceLocked(accountID)
	if balance < amount {
		return false, balance, nil
	}

	balance -= amount
	s.balances[accountID] = balance
	return true, balance, nil
}

// Increment adds amount to the balance and returns the new balance.
func (s *BalanceStore) Increment(_ context.Context, accountID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balanceLocked(accountID) + amount
	s.balances[accountID] = balance
	return balance, nil
}

// SetBalance overwrites the balance for an account. Intended for tests and
// administrative seeding.
func (s *BalanceStore) SetBalance(accountID string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[accountID] = balance
}
