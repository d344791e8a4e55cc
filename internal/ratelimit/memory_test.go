package ratelimit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

func TestMemoryLimiter_LimitsAfterMaxAttempts(t *testing.T) {
	l := NewMemoryLimiter(nil)
	ctx := context.Background()

	var limitedAt []int
	for i := 1; i <= 15; i++ {
		limited, err := l.Check(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if limited {
			limitedAt = append(limitedAt, i)
		}
	}
	if len(limitedAt) == 0 || limitedAt[0] != 11 {
		t.Fatalf("expected limiting to start at call 11, got %v", limitedAt)
	}

	// A different client is unaffected by the first client's count.
	limited, err := l.Check(ctx, "203.0.113.8")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if limited {
		t.Fatalf("expected fresh client to be unlimited")
	}
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	l := NewMemoryLimiter(nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		l.Check(ctx, "ip")
	}
	if limited, _ := l.Check(ctx, "ip"); !limited {
		t.Fatalf("expected limited within window")
	}

	now = now.Add(DefaultWindow + time.Second)
	if limited, _ := l.Check(ctx, "ip"); limited {
		t.Fatalf("expected fresh window after expiry")
	}
}

func TestMemoryLimiter_CleanupRemovesExpired(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	l := NewMemoryLimiter(nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	l.Check(ctx, "a")
	l.Check(ctx, "b")

	now = now.Add(DefaultWindow + time.Second)
	l.Cleanup(ctx)
	if got := l.Size(); got != 0 {
		t.Fatalf("expected empty store after expiry sweep, got %d", got)
	}
}

func TestMemoryLimiter_CleanupBoundsStoreSize(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	now := time.Unix(1700000000, 0).UTC()
	l := NewMemoryLimiter(log, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 15000; i++ {
		l.Check(ctx, fmt.Sprintf("198.51.100.%d", i))
	}
	if got := l.Size(); got != 15000 {
		t.Fatalf("expected 15000 entries before cleanup, got %d", got)
	}

	l.Cleanup(ctx)
	if got := l.Size(); got > DefaultMaxStoreSize {
		t.Fatalf("expected store bounded to %d, got %d", DefaultMaxStoreSize, got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("exceeded maximum size")) {
		t.Fatalf("expected eviction warning, got log: %s", buf.String())
	}
}
