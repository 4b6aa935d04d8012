// Package redis provides Redis-backed balance and like stores. All balance
// mutations run as Lua scripts so the check and the write execute atomically
// inside Redis, which makes the stores safe for multi-instance deployments.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BalanceStore is a Redis-backed balance store.
type BalanceStore struct {
	client          redis.Cmdable
	keyPrefix       string
	startingBalance int64
}

// Option configures a Redis store.
type Option func(*BalanceStore)

// WithKeyPrefix sets the Redis key prefix (default "minicoder:tokens:").
func WithKeyPrefix(prefix string) Option {
	return func(s *BalanceStore) { s.keyPrefix = prefix }
}

// NewBalanceStore creates a new Redis-backed balance store. The client must
// be a connected *redis.Client or *redis.ClusterClient.
func NewBalanceStore(client redis.Cmdable, startingBalance int64, opts ...Option) *BalanceStore {
	s := &BalanceStore{
		client:          client,
		keyPrefix:       "minicoder:tokens:",
		startingBalance: startingBalance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BalanceStore) accountKey(accountID string) string {
	return s.keyPrefix + accountID
}

// tryDecrementScript atomically seeds an unseen account with the starting
// balance, checks it against the requested amount, and decrements on success.
// KEYS[1] = account balance key
// ARGV[1] = amount
// ARGV[2] = starting balance for unseen accounts
//
// Returns {1, remaining} on success, {0, current} on refusal.
var tryDecrementScript = redis.NewScript(`
local key = KEYS[1]
local amount = tonumber(ARGV[1])
local starting = tonumber(ARGV[2])

local balance = redis.call("GET", key)
if not balance then
    balance = starting
    redis.call("SET", key, balance)
else
    balance = tonumber(balance)
end

if balance < amount then
    return {0, balance}
end

balance = balance - amount
redis.call("SET", key, balance)
return {1, balance}
`)

// Balance returns the current balance, seeding unseen accounts.
func (s *BalanceStore) Balance(ctx context.Context, accountID string) (int64, error) {
	key := s.accountKey(accountID)

	if err := s.client.SetNX(ctx, key, s.startingBalance, 0).Err(); err != nil {
		return 0, fmt.Errorf("redis setnx failed: %w", err)
	}

	balance, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return balance, nil
}

// TryDecrement atomically decrements the balance by amount if available.
func (s *BalanceStore) TryDecrement(ctx context.Context, accountID string, amount int64) (bool, int64, error) {
	result, err := tryDecrementScript.Run(ctx, s.client,
		[]string{s.accountKey(accountID)},
		amount, s.startingBalance,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("redis decrement script failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("redis decrement script returned %d values, want 2", len(result))
	}

	return result[0] == 1, result[1], nil
}

// Increment adds amount to the balance and returns the new balance.
func (s *BalanceStore) Increment(ctx context.Context, accountID string, amount int64) (int64, error) {
	balance, err := s.client.IncrBy(ctx, s.accountKey(accountID), amount).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incrby failed: %w", err)
	}
	return balance, nil
}
