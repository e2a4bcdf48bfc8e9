package inmemory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

func TestCache_GetPut(t *testing.T) {
	c := NewCache(time.Minute)

	if _, ok := c.Get("user-1", domain.Window30); ok {
		t.Fatal("expected miss on empty cache")
	}

	sig := &domain.WindowSignals{Window: domain.Window30}
	c.Put("user-1", domain.Window30, sig)

	got, ok := c.Get("user-1", domain.Window30)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got != sig {
		t.Fatal("expected the stored signals back")
	}

	if _, ok := c.Get("user-1", domain.Window180); ok {
		t.Fatal("windows must be cached independently")
	}
	if _, ok := c.Get("user-2", domain.Window30); ok {
		t.Fatal("users must be cached independently")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("user-1", domain.Window30, &domain.WindowSignals{Window: domain.Window30})

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("user-1", domain.Window30); !ok {
		t.Fatal("entry expired too early")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("user-1", domain.Window30); ok {
		t.Fatal("entry should have expired")
	}
}

func TestCache_GetOrComputeDedupes(t *testing.T) {
	c := NewCache(time.Minute)

	var calls int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (*domain.WindowSignals, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &domain.WindowSignals{Window: domain.Window30}, nil
	}

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*domain.WindowSignals, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig, err := c.GetOrCompute(context.Background(), "user-1", domain.Window30, compute)
			if err != nil {
				t.Errorf("GetOrCompute: %v", err)
			}
			results[i] = sig
		}(i)
	}

	// Let the goroutines pile onto the in-flight computation before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("compute ran %d times, want 1", got)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent callers should share one result")
		}
	}

	if _, ok := c.Get("user-1", domain.Window30); !ok {
		t.Fatal("computed result should be cached")
	}
}

func TestCache_GetOrComputeErrorNotCached(t *testing.T) {
	c := NewCache(time.Minute)

	var calls int
	compute := func(ctx context.Context) (*domain.WindowSignals, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("source unavailable")
		}
		return &domain.WindowSignals{Window: domain.Window30}, nil
	}

	if _, err := c.GetOrCompute(context.Background(), "user-1", domain.Window30, compute); err == nil {
		t.Fatal("expected error from failing compute")
	}
	if _, ok := c.Get("user-1", domain.Window30); ok {
		t.Fatal("failed computation must not be cached")
	}

	sig, err := c.GetOrCompute(context.Background(), "user-1", domain.Window30, compute)
	if err != nil {
		t.Fatalf("GetOrCompute after failure: %v", err)
	}
	if sig == nil {
		t.Fatal("expected signals on retry")
	}
	if calls != 2 {
		t.Fatalf("compute ran %d times, want 2", calls)
	}
}
