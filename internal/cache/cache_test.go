package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache[string], *time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New[string](DefaultTTL)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetReturnsStoredValue(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("k", "v")
	value, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestZeroTTLBehavesAsExpired(t *testing.T) {
	c, _ := newTestCache(t)
	c.SetWithTTL("k", "v", 0)
	_, ok := c.Get("k")
	assert.False(t, ok, "zero TTL entry must be absent immediately")

	c.SetWithTTL("k", "v", -time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "negative TTL entry must be absent immediately")
}

func TestLazyEvictionOnGet(t *testing.T) {
	c, now := newTestCache(t)
	c.SetWithTTL("k", "v", time.Minute)
	*now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be purged at read time")
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("k", "v")
	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
}

func TestDeletePrefix(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("a@x.com|user:view", "allow")
	c.Set("a@x.com|user:assign_roles", "deny")
	c.Set("b@x.com|user:view", "allow")

	assert.Equal(t, 2, c.DeletePrefix("a@x.com|"))
	_, ok := c.Get("b@x.com|user:view")
	assert.True(t, ok, "other subjects must keep their entries")
}

func TestClearAndLen(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("a", "1")
	c.Set("b", "2")
	assert.Equal(t, 2, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCleanupRemovesOnlyExpired(t *testing.T) {
	c, now := newTestCache(t)
	c.SetWithTTL("old", "v", time.Minute)
	c.SetWithTTL("fresh", "v", time.Hour)
	*now = now.Add(10 * time.Minute)

	assert.Equal(t, 1, c.Cleanup())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestGetOrSetComputesOnMiss(t *testing.T) {
	c, _ := newTestCache(t)
	calls := 0
	compute := func(context.Context) (string, error) {
		calls++
		return "computed", nil
	}

	value, err := c.GetOrSet(context.Background(), "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)

	value, err = c.GetOrSet(context.Background(), "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls, "second call should hit the cache")
}

func TestGetOrSetPropagatesComputeError(t *testing.T) {
	c, _ := newTestCache(t)
	wantErr := errors.New("store down")
	_, err := c.GetOrSet(context.Background(), "k", time.Minute, func(context.Context) (string, error) {
		return "", wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, c.Len(), "failed compute must not be cached")
}

func TestGetOrSetConcurrentMisses(t *testing.T) {
	c := New[string](DefaultTTL)
	start := make(chan struct{})
	results := make([]string, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			value, err := c.GetOrSet(context.Background(), "k", time.Minute, func(context.Context) (string, error) {
				time.Sleep(10 * time.Millisecond)
				return "computed", nil
			})
			assert.NoError(t, err)
			results[i] = value
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, c.Len(), "cache must end with exactly one entry")
	stored, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "computed", stored)
	assert.Contains(t, results, stored, "at least one caller observes the stored value")
}

func TestGetManyReturnsPartialMap(t *testing.T) {
	c, now := newTestCache(t)
	c.SetWithTTL("a", "1", time.Minute)
	c.SetWithTTL("b", "2", time.Minute)
	c.SetWithTTL("c", "3", time.Hour)
	*now = now.Add(2 * time.Minute)
	c.Set("d", "4")

	found := c.GetMany([]string{"a", "b", "c", "d", "e"})
	assert.Equal(t, map[string]string{"c": "3", "d": "4"}, found, "only unexpired keys are returned")

	c2, _ := newTestCache(t)
	c2.SetMany(map[string]string{"x": "1", "y": "2"}, time.Minute)
	assert.Len(t, c2.GetMany([]string{"x", "y", "z"}), 2)
}

func TestSweepEvictsInBackground(t *testing.T) {
	c := New[string](DefaultTTL)
	c.SetWithTTL("k", "v", time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Sweep(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
