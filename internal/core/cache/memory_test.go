package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/core/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetAndGet(t *testing.T) {
	cache := NewMemoryCache(0)

	entry := &Entry{Analysis: &correction.Result{}}
	cache.Set("abc", entry)

	got, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Same(t, entry.Analysis, got.Analysis)
	assert.NotZero(t, got.LastAccessed)

	got.Analysis = nil
	again, _ := cache.Get("abc")
	assert.NotNil(t, again.Analysis, "Get returns a snapshot")
	assert.Equal(t, 1, cache.Len())

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestMemoryCacheUpdate(t *testing.T) {
	cache := NewMemoryCache(0)

	cache.Update("fp", func(e *Entry) {
		e.Timelines = []timeline.CategoryTimeline{{Category: "posture"}}
	})
	cache.Update("fp", func(e *Entry) {
		e.Analysis = &correction.Result{}
	})

	got, ok := cache.Get("fp")
	require.True(t, ok)
	assert.NotNil(t, got.Analysis)
	require.Len(t, got.Timelines, 1)
	assert.Equal(t, "posture", got.Timelines[0].Category)
}

func TestMemoryCacheClear(t *testing.T) {
	cache := NewMemoryCache(0)
	cache.Set("a", &Entry{})
	cache.Set("b", &Entry{})

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestMemoryCacheEviction(t *testing.T) {
	cache := NewMemoryCache(2)

	cache.Set("oldest", &Entry{})
	time.Sleep(time.Millisecond)
	cache.Set("middle", &Entry{})
	time.Sleep(time.Millisecond)
	_, _ = cache.Get("oldest")
	time.Sleep(time.Millisecond)
	cache.Set("newest", &Entry{})

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("middle")
	assert.False(t, ok, "least recently accessed entry should be evicted")
	_, ok = cache.Get("oldest")
	assert.True(t, ok)
	_, ok = cache.Get("newest")
	assert.True(t, ok)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache(8)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("fp-%d-%d", id, j%4)
				cache.Set(key, &Entry{})
				cache.Get(key)
				cache.Len()
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 8)
}
