package memory

import (
	"context"
	"sync"
)

// LikeStore is an in-memory like store. Each project keeps the set of
// accounts that like it; the total is the set size, so toggle and count can
// never drift apart.
type LikeStore struct {
	mu       sync.Mutex
	projects map[string]map[string]struct{}
}

// NewLikeStore creates a new in-memory like store.
func NewLikeStore() *LikeStore {
	return &LikeStore{
		projects: make(map[string]map[string]struct{}),
	}
}

// Toggle flips the like of accountID on projectID and returns the new state
// and total.
func (s *LikeStore) Toggle(_ context.Context, projectID, accountID string) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	likers, ok := s.projects[projectID]
	if !ok {
		likers = make(map[string]struct{})
		s.projects[projectID] = likers
	}

	if _, liked := likers[accountID]; liked {
		delete(likers, accountID)
		return false, int64(len(likers)), nil
	}

	likers[accountID] = struct{}{}
	return true, int64(len(likers)), nil
}

// Count returns the number of likes for a project.
func (s *LikeStore) Count(_ context.Context, projectID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.projects[projectID])), nil
}
