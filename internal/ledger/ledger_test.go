package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/ledger"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/store/memory"
)

// failingStore is a mock BalanceStore whose operations can be forced to fail.
type failingStore struct {
	balanceErr   error
	decrementErr error
	incrementErr error

	inner *memory.BalanceStore
}

func newFailingStore(startingBalance int64) *failingStore {
	return &failingStore{inner: memory.NewBalanceStore(startingBalance)}
}

func (s *failingStore) Balance(ctx context.Context, accountID string) (int64, error) {
	if s.balanceErr != nil {
		return 0, s.balanceErr
	}
	return s.inner.Balance(ctx, accountID)
}

func (s *failingStore) TryDecrement(ctx context.Context, accountID string, amount int64) (bool, int64, error) {
	if s.decrementErr != nil {
		return false, 0, s.decrementErr
	}
	return s.inner.TryDecrement(ctx, accountID, amount)
}

func (s *failingStore) Increment(ctx context.Context, accountID string, amount int64) (int64, error) {
	if s.incrementErr != nil {
		return 0, s.incrementErr
	}
	return s.inner.Increment(ctx, accountID, amount)
}

func TestTokenLedger_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("should decrement balance on success", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 2)
		require.NoError(t, err)
		require.NotNil(t, res)
		require.Equal(t, "alice", res.AccountID)
		require.Equal(t, int64(2), res.Amount)
		require.NotEmpty(t, res.ID)

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(3), balance)
	})

	t.Run("should reject insufficient balance without touching it", func(t *testing.T) {
		store := memory.NewBalanceStore(1)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 2)
		require.Nil(t, res)

		var balanceErr *ledger.InsufficientBalanceError
		require.ErrorAs(t, err, &balanceErr)
		require.Equal(t, int64(1), balanceErr.Available)
		require.Equal(t, int64(2), balanceErr.Required)

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(1), balance)
	})

	t.Run("should reject zero balance with exact error fields", func(t *testing.T) {
		store := memory.NewBalanceStore(0)
		tokens := ledger.NewTokenLedger(store)

		_, err := tokens.Reserve(ctx, "alice", 1)

		var balanceErr *ledger.InsufficientBalanceError
		require.ErrorAs(t, err, &balanceErr)
		require.Equal(t, int64(0), balanceErr.Available)
		require.Equal(t, int64(1), balanceErr.Required)
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		_, err := tokens.Reserve(ctx, "alice", 0)
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)

		_, err = tokens.Reserve(ctx, "alice", -1)
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})

	t.Run("should wrap store failures as unavailable", func(t *testing.T) {
		store := newFailingStore(5)
		store.decrementErr = errors.New("connection refused")
		tokens := ledger.NewTokenLedger(store)

		_, err := tokens.Reserve(ctx, "alice", 1)
		require.ErrorIs(t, err, ledger.ErrUnavailable)
	})
}

func TestTokenLedger_ConcurrentReserve(t *testing.T) {
	// With balance B and N > B concurrent reservations of 1 token each,
	// exactly B must succeed and the final balance must be 0.
	const (
		initialBalance = 25
		attempts       = 100
	)

	ctx := context.Background()
	store := memory.NewBalanceStore(initialBalance)
	tokens := ledger.NewTokenLedger(store)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		rejections []error
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := tokens.Reserve(ctx, "alice", 1)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else {
				rejections = append(rejections, err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, initialBalance, succeeded)
	require.Len(t, rejections, attempts-initialBalance)
	for _, err := range rejections {
		var balanceErr *ledger.InsufficientBalanceError
		require.ErrorAs(t, err, &balanceErr)
	}

	balance, err := tokens.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestTokenLedger_Refund(t *testing.T) {
	ctx := context.Background()

	t.Run("should restore the reserved amount", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 3)
		require.NoError(t, err)

		require.NoError(t, tokens.Refund(ctx, res))

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(5), balance)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 3)
		require.NoError(t, err)

		require.NoError(t, tokens.Refund(ctx, res))
		require.NoError(t, tokens.Refund(ctx, res))

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(5), balance)
	})

	t.Run("should not refund a committed reservation", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 3)
		require.NoError(t, err)

		tokens.Commit(ctx, res)
		require.NoError(t, tokens.Refund(ctx, res))

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(2), balance)
	})

	t.Run("should tolerate nil reservation", func(t *testing.T) {
		tokens := ledger.NewTokenLedger(memory.NewBalanceStore(5))
		require.NoError(t, tokens.Refund(ctx, nil))
	})

	t.Run("should stay retryable when the store write fails", func(t *testing.T) {
		store := newFailingStore(5)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 3)
		require.NoError(t, err)

		store.incrementErr = errors.New("connection reset")
		require.ErrorIs(t, tokens.Refund(ctx, res), ledger.ErrUnavailable)

		// The failed refund did not consume the reservation's single resolution.
		store.incrementErr = nil
		require.NoError(t, tokens.Refund(ctx, res))

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(5), balance)
	})
}

func TestTokenLedger_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep the decrement", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 2)
		require.NoError(t, err)

		tokens.Commit(ctx, res)

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(3), balance)
	})

	t.Run("should be idempotent and terminal", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		res, err := tokens.Reserve(ctx, "alice", 2)
		require.NoError(t, err)

		tokens.Commit(ctx, res)
		tokens.Commit(ctx, res)

		balance, err := tokens.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(3), balance)
	})
}

func TestTokenLedger_Grant(t *testing.T) {
	ctx := context.Background()

	t.Run("should credit tokens", func(t *testing.T) {
		store := memory.NewBalanceStore(5)
		tokens := ledger.NewTokenLedger(store)

		balance, err := tokens.Grant(ctx, "alice", 10)
		require.NoError(t, err)
		require.Equal(t, int64(15), balance)
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		tokens := ledger.NewTokenLedger(memory.NewBalanceStore(5))

		_, err := tokens.Grant(ctx, "alice", 0)
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})
}

func TestTokenLedger_BalanceOf(t *testing.T) {
	ctx := context.Background()

	t.Run("should seed unseen accounts with the starting balance", func(t *testing.T) {
		tokens := ledger.NewTokenLedger(memory.NewBalanceStore(5))

		balance, err := tokens.BalanceOf(ctx, "never-seen")
		require.NoError(t, err)
		require.Equal(t, int64(5), balance)
	})

	t.Run("should wrap store failures as unavailable", func(t *testing.T) {
		store := newFailingStore(5)
		store.balanceErr = errors.New("connection refused")
		tokens := ledger.NewTokenLedger(store)

		_, err := tokens.BalanceOf(ctx, "alice")
		require.ErrorIs(t, err, ledger.ErrUnavailable)
	})
}
