// Package ledger implements the token ledger that meters paid generation
// capacity per account. Balances live in a BalanceStore; the ledger adds the
// reservation state machine on top: a reservation is created by Reserve and
// must end in exactly one of committed or refunded.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/observability"
)

// Sentinel errors.
var (
	// ErrInvalidAmount indicates a non-positive reservation amount (caller bug).
	ErrInvalidAmount = errors.New("ledger: reservation amount must be positive")

	// ErrUnavailable indicates the balance store could not be reached. No
	// assumption may be made about the balance state; callers should surface
	// this as a retryable server error.
	ErrUnavailable = errors.New("ledger: balance store unavailable")
)

// InsufficientBalanceError is returned by Reserve when the account does not
// hold enough tokens for the requested amount.
type InsufficientBalanceError struct {
	AccountID string
	Available int64
	Required  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("ledger: insufficient balance for account %s: available=%d required=%d",
		e.AccountID, e.Available, e.Required)
}

// BalanceStore is the storage substrate the ledger is built on. Implementations
// must guarantee that TryDecrement is atomic with respect to concurrent calls
// on the same account: the check and the decrement are a single indivisible
// operation.
type BalanceStore interface {
	// Balance returns the current balance for an account.
	Balance(ctx context.Context, accountID string) (int64, error)

	// TryDecrement atomically decrements the balance by amount if at least
	// amount is available. It reports whether the decrement happened and the
	// balance observed (remaining on success, current on refusal).
	TryDecrement(ctx context.Context, accountID string, amount int64) (ok bool, balance int64, err error)

	// Increment adds amount to the balance and returns the new balance.
	// Used for refunds and explicit grants.
	Increment(ctx context.Context, accountID string, amount int64) (int64, error)
}

type reservationState int

const (
	stateCreated reservationState = iota
	stateCommitted
	stateRefunded
)

// Reservation is an in-flight claim against an account balance. The decrement
// happens at Reserve; the reservation then resolves to committed (decrement
// kept) or refunded (decrement reversed) exactly once.
type Reservation struct {
	ID        string
	AccountID string
	Amount    int64

	mu    sync.Mutex
	state reservationState
}

// resolve transitions the reservation to a terminal state. It returns false
// if the reservation was already resolved, which makes Commit and Refund
// idempotent.
func (r *Reservation) resolve(to reservationState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateCreated {
		return false
	}
	r.state = to
	return true
}

// TokenLedger meters token consumption against a BalanceStore.
type TokenLedger struct {
	store BalanceStore
}

// NewTokenLedger creates a new token ledger (DI constructor).
func NewTokenLedger(store BalanceStore) *TokenLedger {
	return &TokenLedger{store: store}
}

// Reserve atomically checks and decrements the account balance. On success
// the returned reservation must later be resolved with Commit or Refund.
func (l *TokenLedger) Reserve(ctx context.Context, accountID string, amount int64) (*Reservation, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	ok, balance, err := l.store.TryDecrement(ctx, accountID, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !ok {
		return nil, &InsufficientBalanceError{
			AccountID: accountID,
			Available: balance,
			Required:  amount,
		}
	}

	return &Reservation{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Amount:    amount,
	}, nil
}

// Commit finalizes a reservation. The decrement already happened at Reserve,
// so there is no balance change. Committing an already resolved reservation
// is a no-op.
func (l *TokenLedger) Commit(ctx context.Context, res *Reservation) {
	if res == nil {
		return
	}

	if !res.resolve(stateCommitted) {
		return
	}

	observability.FromContext(ctx).Debug("reservation committed",
		observability.String("reservation_id", res.ID),
		observability.Int64("amount", res.Amount),
	)
}

// Refund reverses the decrement of an unresolved reservation. Refunding an
// already committed or already refunded reservation is a no-op.
func (l *TokenLedger) Refund(ctx context.Context, res *Reservation) error {
	if res == nil {
		return nil
	}

	if !res.resolve(stateRefunded) {
		return nil
	}

	if _, err := l.store.Increment(ctx, res.AccountID, res.Amount); err != nil {
		// Roll the state back so a retry can attempt the credit again.
		res.mu.Lock()
		res.state = stateCreated
		res.mu.Unlock()
		return fmt.Errorf("%w: refund of %d for account %s failed: %v",
			ErrUnavailable, res.Amount, res.AccountID, err)
	}

	observability.FromContext(ctx).Debug("reservation refunded",
		observability.String("reservation_id", res.ID),
		observability.Int64("amount", res.Amount),
	)
	return nil
}

// BalanceOf returns the current balance for an account. The read is not
// synchronized with in-flight reservations and may be stale by the duration
// of one unresolved reservation.
func (l *TokenLedger) BalanceOf(ctx context.Context, accountID string) (int64, error) {
	balance, err := l.store.Balance(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return balance, nil
}

// Grant credits tokens to an account outside the reservation flow (top-ups,
// promotional grants). Returns the new balance.
func (l *TokenLedger) Grant(ctx context.Context, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := l.store.Increment(ctx, accountID, amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return balance, nil
}
