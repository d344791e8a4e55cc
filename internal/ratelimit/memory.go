package ratelimit

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Defaults for per-IP validation throttling.
const (
	DefaultMaxAttempts  = 10
	DefaultWindow       = time.Minute
	DefaultMaxStoreSize = 10_000
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed-window limiter with a hard ceiling
// on table size. The ceiling bounds worst-case memory even when an attacker
// controls IP cardinality; surplus entries are evicted oldest-first.
//
// State is lost on restart. That is acceptable for an attempt throttle.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]entry

	maxAttempts  int
	window       time.Duration
	maxStoreSize int

	log   *slog.Logger
	clock func() time.Time
}

type MemoryOption func(*MemoryLimiter)

func WithMaxAttempts(n int) MemoryOption {
	return func(l *MemoryLimiter) { l.maxAttempts = n }
}

func WithWindow(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) { l.window = d }
}

func WithMaxStoreSize(n int) MemoryOption {
	return func(l *MemoryLimiter) { l.maxStoreSize = n }
}

func WithClock(clock func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.clock = clock }
}

func NewMemoryLimiter(log *slog.Logger, opts ...MemoryOption) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}
	l := &MemoryLimiter{
		entries:      make(map[string]entry),
		maxAttempts:  DefaultMaxAttempts,
		window:       DefaultWindow,
		maxStoreSize: DefaultMaxStoreSize,
		log:          log,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records one attempt and reports whether clientID is over its limit.
func (l *MemoryLimiter) Check(_ context.Context, clientID string) (bool, error) {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[clientID]
	if !ok || !e.resetAt.After(now) {
		l.entries[clientID] = entry{count: 1, resetAt: now.Add(l.window)}
		return false, nil
	}

	e.count++
	l.entries[clientID] = e
	return e.count > l.maxAttempts, nil
}

// Cleanup removes expired entries, then enforces the store ceiling by
// evicting the entries closest to expiry.
func (l *MemoryLimiter) Cleanup(_ context.Context) {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, e := range l.entries {
		if !e.resetAt.After(now) {
			delete(l.entries, id)
		}
	}

	if len(l.entries) <= l.maxStoreSize {
		return
	}

	l.log.Warn("rate limit store exceeded maximum size, evicting oldest entries",
		"size", len(l.entries), "max", l.maxStoreSize)

	type keyed struct {
		id      string
		resetAt time.Time
	}
	all := make([]keyed, 0, len(l.entries))
	for id, e := range l.entries {
		all = append(all, keyed{id: id, resetAt: e.resetAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].resetAt.Before(all[j].resetAt) })

	surplus := len(l.entries) - l.maxStoreSize
	for _, k := range all[:surplus] {
		delete(l.entries, k.id)
	}
}

// Size reports the current table size. Intended for tests and metrics.
func (l *MemoryLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// StartCleanup sweeps the table on a fixed interval until ctx is canceled.
func (l *MemoryLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup(ctx)
			}
		}
	}()
}
