package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	t.Run("get and put", func(t *testing.T) {
		c := NewLRU[string, int](2)
		c.Put("a", 1)
		v, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, v)

		_, ok = c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		c := NewLRU[string, int](2)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Get("a")
		c.Put("c", 3)

		_, ok := c.Get("b")
		assert.False(t, ok, "b should be evicted")
		_, ok = c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("update existing", func(t *testing.T) {
		c := NewLRU[string, int](2)
		c.Put("a", 1)
		c.Put("a", 5)
		v, _ := c.Get("a")
		assert.Equal(t, 5, v)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("seen", func(t *testing.T) {
		c := NewLRU[string, struct{}](1)
		assert.False(t, c.Seen("x"))
		assert.True(t, c.Seen("x"))
		assert.False(t, c.Seen("y"))
		assert.False(t, c.Seen("x"), "x evicted by y")
	})

	t.Run("concurrent access", func(t *testing.T) {
		c := NewLRU[int, int](50)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					c.Put(n*100+j, j)
					c.Get(j)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 50, c.Len())
	})
}

func TestMemoryThrottle(t *testing.T) {
	th := NewMemoryThrottle(10)
	ctx := context.Background()

	ok, err := th.Allow(ctx, "KDSM|55|1200")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = th.Allow(ctx, "KDSM|55|1200")
	require.NoError(t, err)
	assert.False(t, ok)
}

type stubSetNX struct {
	keys []string
	ok   bool
	err  error
}

func (s *stubSetNX) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	s.keys = append(s.keys, key)
	return redis.NewBoolResult(s.ok, s.err)
}

func TestRedisThrottle(t *testing.T) {
	stub := &stubSetNX{ok: true}
	th := &RedisThrottle{client: stub, prefix: "wind:", ttl: time.Hour}

	ok, err := th.Allow(context.Background(), "KDSM")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"wind:KDSM"}, stub.keys)

	stub.err = errors.New("connection refused")
	_, err = th.Allow(context.Background(), "KDSM")
	assert.ErrorContains(t, err, "connection refused")
}
