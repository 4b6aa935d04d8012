package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LikeStore is a Redis-backed like store. Likes for a project are a set of
// account IDs; the shared counter is the set cardinality, so the toggle and
// the count stay consistent without a second key.
type LikeStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewLikeStore creates a new Redis-backed like store.
func NewLikeStore(client redis.Cmdable) *LikeStore {
	return &LikeStore{
		client:    client,
		keyPrefix: "minicoder:likes:",
	}
}

func (s *LikeStore) projectKey(projectID string) string {
	return s.keyPrefix + projectID
}

// toggleScript atomically flips set membership and returns the new state.
// KEYS[1] = project like set
// ARGV[1] = account ID
//
// Returns {1, total} when the like was added, {0, total} when removed.
var toggleScript = redis.NewScript(`
local key = KEYS[1]
local member = ARGV[1]

if redis.call("SISMEMBER", key, member) == 1 then
    redis.call("SREM", key, member)
    return {0, redis.call("SCARD", key)}
end

redis.call("SADD", key, member)
return {1, redis.call("SCARD", key)}
`)

// Toggle flips the like of accountID on projectID and returns the new state
// and total.
func (s *LikeStore) Toggle(ctx context.Context, projectID, accountID string) (bool, int64, error) {
	result, err := toggleScript.Run(ctx, s.client,
		[]string{s.projectKey(projectID)},
		accountID,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("redis like toggle script failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("redis like toggle script returned %d values, want 2", len(result))
	}

	return result[0] == 1, result[1], nil
}

// Count returns the number of likes for a project.
func (s *LikeStore) Count(ctx context.Context, projectID string) (int64, error) {
	total, err := s.client.SCard(ctx, s.projectKey(projectID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis scard failed: %w", err)
	}
	return total, nil
}
