package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ErrTooLarge is returned by a byte-bounded MemoryCache for a value that could
// never fit.
var ErrTooLarge = errors.New("cache: value exceeds memory limit")

// MemoryCache is the single-process fallback used when Redis is not configured.
// Entries expire after the TTL given to NewMemory; per-call TTLs shorter than
// that are honoured on read. A cache built by NewMemoryBounded also evicts the
// oldest entries once the stored values exceed its byte limit.
type MemoryCache struct {
	lru      *expirable.LRU[string, memoryEntry]
	now      func() time.Time
	mu       sync.Mutex
	maxBytes int64
	bytes    atomic.Int64
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

func NewMemory(size int, maxTTL time.Duration) *MemoryCache {
	return NewMemoryBounded(size, 0, maxTTL)
}

// NewMemoryBounded caps both the entry count and the total value bytes.
// A maxBytes of zero leaves the bytes unbounded.
func NewMemoryBounded(size int, maxBytes int64, maxTTL time.Duration) *MemoryCache {
	m := &MemoryCache{now: time.Now, maxBytes: maxBytes}
	m.lru = expirable.NewLRU[string, memoryEntry](size, func(_ string, e memoryEntry) {
		m.bytes.Add(-int64(len(e.value)))
	}, maxTTL)
	return m
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = m.now().Add(ttl)
	}
	if m.maxBytes > 0 && int64(len(value)) > m.maxBytes {
		return ErrTooLarge
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Remove first so the replaced value is subtracted by the evict callback.
	m.lru.Remove(key)
	m.bytes.Add(int64(len(entry.value)))
	m.lru.Add(key, entry)
	for m.maxBytes > 0 && m.bytes.Load() > m.maxBytes {
		if _, _, ok := m.lru.RemoveOldest(); !ok {
			break
		}
	}
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

// Bytes reports the total size of the stored values.
func (m *MemoryCache) Bytes() int64 {
	return m.bytes.Load()
}
