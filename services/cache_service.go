package services

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
)

// Cache status values reported by CacheService.Status
const (
	CacheStatusOK          = "ok"
	CacheStatusUnavailable = "unavailable"
	CacheStatusDisabled    = "disabled"
)

// KeyValueStore is an opaque get/set store of serialized values.
// Get reports found=false with a nil error on a plain miss.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by stores that can report their reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemoryEntry represents a cached item and when it was written
type MemoryEntry struct {
	Data       []byte
	InsertedAt time.Time
}

// MemoryStore is an in-process KeyValueStore bounded by entry count.
// Entries never expire; the oldest write is evicted when full.
type MemoryStore struct {
	cache   map[string]*MemoryEntry
	mutex   sync.RWMutex
	maxSize int
}

// NewMemoryStore creates a memory store holding at most maxSize entries
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		cache:   make(map[string]*MemoryEntry),
		maxSize: maxSize,
	}
}

// Get retrieves a copy of the value stored under key
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	entry, exists := ms.cache[key]
	if !exists {
		return nil, false, nil
	}

	value := make([]byte, len(entry.Data))
	copy(value, entry.Data)
	return value, true, nil
}

// Set stores a copy of value under key
func (ms *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if _, exists := ms.cache[key]; !exists && len(ms.cache) >= ms.maxSize {
		ms.evictOldest()
	}

	data := make([]byte, len(value))
	copy(data, value)
	ms.cache[key] = &MemoryEntry{
		Data:       data,
		InsertedAt: time.Now(),
	}
	return nil
}

// evictOldest removes the oldest entry from cache (simple FIFO eviction)
func (ms *MemoryStore) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range ms.cache {
		if oldestKey == "" || entry.InsertedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.InsertedAt
		}
	}

	if oldestKey != "" {
		delete(ms.cache, oldestKey)
	}
}

// Size returns the number of items in cache
func (ms *MemoryStore) Size() int {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	return len(ms.cache)
}

// Ping always succeeds for the in-process store
func (ms *MemoryStore) Ping(context.Context) error {
	return nil
}

// CacheService stores JSON records in a KeyValueStore on a best-effort basis.
// Read failures behave as misses and write failures are logged and counted,
// so callers never see a cache error. A nil store disables caching.
type CacheService struct {
	store   KeyValueStore
	backend string
	metrics *shared.ServiceMetrics
	logger  *logrus.Entry
}

// NewCacheService wraps store. metrics may be nil.
func NewCacheService(store KeyValueStore, backend string, metrics *shared.ServiceMetrics) *CacheService {
	if metrics == nil {
		metrics = shared.NewServiceMetrics("cache")
	}
	return &CacheService{
		store:   store,
		backend: backend,
		metrics: metrics,
		logger: logrus.WithFields(logrus.Fields{
			"component": "CacheService",
			"backend":   backend,
		}),
	}
}

// Backend returns the configured backend name
func (cs *CacheService) Backend() string {
	return cs.backend
}

// Enabled reports whether a store is attached
func (cs *CacheService) Enabled() bool {
	return cs.store != nil
}

// GetJSON decodes the value under key into out and reports whether it was found.
func (cs *CacheService) GetJSON(ctx context.Context, key string, out interface{}) bool {
	if cs.store == nil {
		return false
	}

	raw, found, err := cs.store.Get(ctx, key)
	if err != nil {
		cs.readFailed(key, "cache read failed", err)
		return false
	}
	if !found {
		cs.metrics.IncrementCustomCounter(shared.MetricCacheMisses)
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		cs.readFailed(key, "cached value is not decodable", err)
		return false
	}

	cs.metrics.IncrementCustomCounter(shared.MetricCacheHits)
	return true
}

// SetJSON encodes value and stores it under key. Failures are logged and counted.
func (cs *CacheService) SetJSON(ctx context.Context, key string, value interface{}) {
	if cs.store == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		cs.writeFailed(key, "failed to encode cache value", err)
		return
	}

	if err := cs.store.Set(ctx, key, raw); err != nil {
		cs.writeFailed(key, "cache write failed", err)
	}
}

func (cs *CacheService) readFailed(key, message string, cause error) {
	cs.metrics.IncrementCustomCounter(shared.MetricCacheReadFailures)
	err := shared.NewServiceError(shared.ErrorCategoryCache, CodeCacheReadFailed, message, "CacheService", "GetJSON", cause)
	cs.logger.WithFields(err.Fields()).WithField("key", key).Warn("Treating cache read as a miss: " + message)
}

func (cs *CacheService) writeFailed(key, message string, cause error) {
	cs.metrics.IncrementCustomCounter(shared.MetricCacheWriteFailures)
	err := shared.NewServiceError(shared.ErrorCategoryCache, CodeCacheWriteFailed, message, "CacheService", "SetJSON", cause)
	cs.logger.WithFields(err.Fields()).WithField("key", key).Warn("Dropped cache write: " + message)
}

// Status reports "disabled", "ok" or "unavailable"
func (cs *CacheService) Status(ctx context.Context) string {
	if cs.store == nil {
		return CacheStatusDisabled
	}

	pinger, ok := cs.store.(Pinger)
	if !ok {
		return CacheStatusOK
	}
	if err := pinger.Ping(ctx); err != nil {
		cs.logger.WithError(err).Warn("Cache ping failed")
		return CacheStatusUnavailable
	}
	return CacheStatusOK
}

// Metrics returns the counters recorded by this service
func (cs *CacheService) Metrics() *shared.ServiceMetrics {
	return cs.metrics
}

// Close releases the underlying store when it holds resources
func (cs *CacheService) Close() error {
	if closer, ok := cs.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
