package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/core/timeline"
	"github.com/penwyp/go-actograph/internal/util"
)

// Entry holds results derived from one reading list
type Entry struct {
	Analysis     *correction.Result
	Timelines    []timeline.CategoryTimeline
	Dropped      []model.Reading
	LastAccessed int64
}

// MemoryCache memoizes analysis and timelines by reading-list fingerprint.
// A zero limit means unbounded; otherwise the least recently accessed
// entries are evicted on Set.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	limit   int
}

func NewMemoryCache(limit int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*Entry),
		limit:   limit,
	}
}

func (mc *MemoryCache) Set(fingerprint string, entry *Entry) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if entry != nil {
		entry.LastAccessed = time.Now().UnixNano()
	}
	mc.entries[fingerprint] = entry
	mc.evictLocked()
}

// Get returns a snapshot of the entry; later updates do not show through it
func (mc *MemoryCache) Get(fingerprint string) (*Entry, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.entries[fingerprint]
	if !ok || entry == nil {
		return nil, false
	}
	entry.LastAccessed = time.Now().UnixNano()
	snapshot := *entry
	return &snapshot, true
}

// Update applies fn to the entry for fingerprint, creating it if missing
func (mc *MemoryCache) Update(fingerprint string, fn func(*Entry)) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.entries[fingerprint]
	if !ok || entry == nil {
		entry = &Entry{}
		mc.entries[fingerprint] = entry
	}
	fn(entry)
	entry.LastAccessed = time.Now().UnixNano()
	mc.evictLocked()
}

func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	n := len(mc.entries)
	mc.entries = make(map[string]*Entry)
	util.LogDebugf("MemoryCache: cleared %d entries", n)
}

func (mc *MemoryCache) evictLocked() {
	if mc.limit <= 0 || len(mc.entries) <= mc.limit {
		return
	}

	type aged struct {
		key string
		at  int64
	}
	ages := make([]aged, 0, len(mc.entries))
	for k, e := range mc.entries {
		var at int64
		if e != nil {
			at = e.LastAccessed
		}
		ages = append(ages, aged{key: k, at: at})
	}
	sort.Slice(ages, func(i, j int) bool { return ages[i].at < ages[j].at })

	excess := len(mc.entries) - mc.limit
	for _, a := range ages[:excess] {
		delete(mc.entries, a.key)
	}
	util.LogDebugf("MemoryCache: evicted %d entries", excess)
}
