package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryBucket keeps one x/time/rate limiter per key. Buckets unused for
// idleTTL are swept on the next call.
type MemoryBucket struct {
	mu      sync.Mutex
	now     func() time.Time
	idleTTL time.Duration
	buckets map[string]*memoryEntry
	sweptAt time.Time
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryBucket(idleTTL time.Duration) *MemoryBucket {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &MemoryBucket{
		now:     time.Now,
		idleTTL: idleTTL,
		buckets: make(map[string]*memoryEntry),
	}
}

func (m *MemoryBucket) Allow(_ context.Context, key string, policy Policy) (Result, error) {
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}
	if err := policy.validate(); err != nil {
		return Result{}, err
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.sweptAt) > m.idleTTL {
		for k, entry := range m.buckets {
			if now.Sub(entry.lastSeen) > m.idleTTL {
				delete(m.buckets, k)
			}
		}
		m.sweptAt = now
	}

	entry, ok := m.buckets[key]
	if !ok {
		entry = &memoryEntry{limiter: rate.NewLimiter(rate.Limit(policy.Rate), policy.Burst)}
		m.buckets[key] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	return newResult(allowed, entry.limiter.TokensAt(now), policy), nil
}
