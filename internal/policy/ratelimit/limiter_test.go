package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Wait(t *testing.T) {
	// 10 requests per second = 100ms interval, burst 1.
	l := New(Config{
		RequestsPerSecond: 10,
		Burst:             1,
	})

	ctx := context.Background()
	url := "https://api.legiscan.com/?op=getBill&id=1"

	// First call should be immediate
	start := time.Now()
	if err := l.Wait(ctx, url); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Logf("warning: first wait took %v", time.Since(start))
	}

	// Next one should wait ~100ms
	start = time.Now()
	if err := l.Wait(ctx, "https://api.legiscan.com/?op=getBill&id=2"); err != nil {
		t.Fatal(err)
	}
	dur := time.Since(start)
	if dur < 80*time.Millisecond {
		t.Errorf("expected wait ~100ms, got %v", dur)
	}
}

func TestLimiter_DifferentHosts(t *testing.T) {
	l := New(Config{
		RequestsPerSecond: 1, // 1 RPS = 1s interval
		Burst:             1,
	})

	ctx := context.Background()

	if err := l.Wait(ctx, "https://a.example.com/1"); err != nil {
		t.Fatal(err)
	}

	// Host B should not be blocked by A
	start := time.Now()
	if err := l.Wait(ctx, "https://b.example.com/1"); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Errorf("host B blocked unexpectedly")
	}
}

func TestLimiter_DisabledWhenRateNotPositive(t *testing.T) {
	l := New(Config{})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := l.Wait(ctx, "https://api.legiscan.com/"); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("expected unlimited waits to be immediate, took %v", time.Since(start))
	}
}

func TestLimiter_ContextCanceled(t *testing.T) {
	l := New(Config{RequestsPerSecond: 0.1, Burst: 1})
	if err := l.Wait(context.Background(), "https://api.legiscan.com/"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, "https://api.legiscan.com/"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestLimiter_HostCaseShareBucket(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1, Burst: 1})
	ctx := context.Background()

	if err := l.Wait(ctx, "https://API.LegiScan.com/?op=getSearch"); err != nil {
		t.Fatal(err)
	}
	if len(l.limiters) != 1 {
		t.Fatalf("expected 1 limiter, got %d", len(l.limiters))
	}

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(short, "https://api.legiscan.com/?op=getBill"); err == nil {
		t.Fatal("expected the lowercase host to share the exhausted bucket")
	}
	if _, ok := l.limiters["api.legiscan.com"]; !ok || len(l.limiters) != 1 {
		t.Fatalf("unexpected limiter keys: %v", l.limiters)
	}
}
