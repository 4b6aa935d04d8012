package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/store/memory"
)

func TestLikeStore_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("should like then unlike", func(t *testing.T) {
		store := memory.NewLikeStore()

		liked, total, err := store.Toggle(ctx, "project-1", "alice")
		require.NoError(t, err)
		require.True(t, liked)
		require.Equal(t, int64(1), total)

		liked, total, err = store.Toggle(ctx, "project-1", "alice")
		require.NoError(t, err)
		require.False(t, liked)
		require.Equal(t, int64(0), total)
	})

	t.Run("should count accounts independently", func(t *testing.T) {
		store := memory.NewLikeStore()

		_, _, err := store.Toggle(ctx, "project-1", "alice")
		require.NoError(t, err)
		_, total, err := store.Toggle(ctx, "project-1", "bob")
		require.NoError(t, err)
		require.Equal(t, int64(2), total)

		count, err := store.Count(ctx, "project-1")
		require.NoError(t, err)
		require.Equal(t, int64(2), count)
	})

	t.Run("should keep projects separate", func(t *testing.T) {
		store := memory.NewLikeStore()

		_, _, err := store.Toggle(ctx, "project-1", "alice")
		require.NoError(t, err)

		count, err := store.Count(ctx, "project-2")
		require.NoError(t, err)
		require.Equal(t, int64(0), count)
	})

	t.Run("should end balanced under a concurrent even number of toggles", func(t *testing.T) {
		store := memory.NewLikeStore()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _, _ = store.Toggle(ctx, "project-1", "alice")
			}()
			go func() {
				defer wg.Done()
				_, _, _ = store.Toggle(ctx, "project-1", "alice")
			}()
		}
		wg.Wait()

		count, err := store.Count(ctx, "project-1")
		require.NoError(t, err)
		require.Equal(t, int64(0), count)
	})
}
