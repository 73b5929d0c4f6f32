package mcpserver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocCache_LoadCollapsesConcurrentMisses(t *testing.T) {
	c := newDocCache(4)
	spec := newLoadedSpec(nil)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func() (*loadedSpec, error) {
		calls.Add(1)
		<-release
		return spec, nil
	}

	var wg sync.WaitGroup
	results := make([]*loadedSpec, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.load("k", time.Minute, fn)
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	// Give the goroutines time to pile up on the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, got := range results {
		assert.Same(t, spec, got)
	}
	assert.LessOrEqual(t, calls.Load(), int32(len(results)))
	assert.Same(t, spec, c.get("k"))

	// A later call is served from the cache.
	before := calls.Load()
	_, err := c.load("k", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())
}

func TestDocCache_LoadErrorsAreNotCached(t *testing.T) {
	c := newDocCache(4)
	_, err := c.load("k", time.Minute, func() (*loadedSpec, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Zero(t, c.size())

	spec := newLoadedSpec(nil)
	got, err := c.load("k", time.Minute, func() (*loadedSpec, error) { return spec, nil })
	require.NoError(t, err)
	assert.Same(t, spec, got)
}

func TestDocCache_GetRefreshesRecency(t *testing.T) {
	c := newDocCache(2)
	a, b, d := newLoadedSpec(nil), newLoadedSpec(nil), newLoadedSpec(nil)
	c.put("a", a, time.Hour)
	c.put("b", b, time.Hour)

	assert.Same(t, a, c.get("a"))
	c.put("d", d, time.Hour)

	assert.Same(t, a, c.get("a"))
	assert.Nil(t, c.get("b"), "expected least recently used entry to be evicted")
	assert.Same(t, d, c.get("d"))
}

func TestDocCache_StartSweeper(t *testing.T) {
	c := newDocCache(4)
	c.put("stale", newLoadedSpec(nil), -time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.startSweeper(ctx, 5*time.Millisecond)
	c.startSweeper(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return c.size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNewDocCache_ClampsSize(t *testing.T) {
	c := newDocCache(0)
	c.put("a", newLoadedSpec(nil), time.Hour)
	c.put("b", newLoadedSpec(nil), time.Hour)
	assert.Equal(t, 1, c.size())
}
