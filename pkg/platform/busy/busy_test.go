package busy

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	t.Run("acquire then release", func(t *testing.T) {
		s := New[int]()
		require.Empty(t, s.Acquire("status", 1))
		assert.True(t, s.Has(1))
		assert.Equal(t, "status", s.Kind(1))

		s.Release(1)
		assert.False(t, s.Has(1))
		assert.Empty(t, s.Kind(1))
	})

	t.Run("batch acquire is all or nothing", func(t *testing.T) {
		s := New[int]()
		require.Empty(t, s.Acquire("status", 2))

		held := s.Acquire("bulk", 1, 2, 3)
		assert.Equal(t, []int{2}, held)
		assert.False(t, s.Has(1))
		assert.False(t, s.Has(3))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("release clears only listed keys", func(t *testing.T) {
		s := New[int]()
		require.Empty(t, s.Acquire("bulk", 1, 2))
		require.Empty(t, s.Acquire("status", 3))

		s.Release(1, 2)
		assert.True(t, s.Has(3))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("concurrent acquire admits exactly one winner", func(t *testing.T) {
		s := New[string]()
		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if len(s.Acquire("status", "p1")) == 0 {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}
