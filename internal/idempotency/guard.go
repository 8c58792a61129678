package idempotency

import (
	"context"
	"sync"
	"time"
)

// Guard answers whether a notification key was already handled inside
// the dedupe window. It is advisory only, downstream reconciliation
// stays safe without it.
type Guard interface {
	// ShouldProcess reports whether the key is unseen within the TTL.
	ShouldProcess(ctx context.Context, key string) (bool, error)
	// MarkProcessed records the key for ttl.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) error
}

// MemoryGuard keeps seen keys in process memory. Entries expire lazily
// on read and in bulk via Sweep.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryGuard builds an empty in-memory guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// ShouldProcess reports true when the key is absent or expired.
func (g *MemoryGuard) ShouldProcess(_ context.Context, key string) (bool, error) {
	if key == "" {
		return true, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	expiresAt, ok := g.seen[key]
	if !ok {
		return true, nil
	}
	if g.now().After(expiresAt) {
		delete(g.seen, key)
		return true, nil
	}
	return false, nil
}

// MarkProcessed records the key until now+ttl.
func (g *MemoryGuard) MarkProcessed(_ context.Context, key string, ttl time.Duration) error {
	if key == "" || ttl <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[key] = g.now().Add(ttl)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (g *MemoryGuard) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	removed := 0
	for key, expiresAt := range g.seen {
		if now.After(expiresAt) {
			delete(g.seen, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
