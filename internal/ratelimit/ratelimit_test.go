package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitAllowsBurst(t *testing.T) {
	l := NewHostLimiter(1, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := l.Wait(ctx, "https://api.lever.co/v0/postings/acme"); err != nil {
			t.Fatalf("burst request %d: %v", i, err)
		}
	}
}

func TestWaitIsPerHost(t *testing.T) {
	// Burst 1 at a very low rate: a second request to the same host would
	// block for minutes, but a different host has its own bucket.
	l := NewHostLimiter(0.001, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "https://boards-api.greenhouse.io/v1/boards/acme/jobs"); err != nil {
		t.Fatalf("first host: %v", err)
	}
	if err := l.Wait(ctx, "https://api.lever.co/v0/postings/acme"); err != nil {
		t.Fatalf("second host should not share the first host's bucket: %v", err)
	}
}

func TestWaitHonorsCancelledContext(t *testing.T) {
	l := NewHostLimiter(0.001, 1)
	ctx := context.Background()
	if err := l.Wait(ctx, "https://example.com/a"); err != nil {
		t.Fatalf("first request: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(cancelled, "https://example.com/a"); err == nil {
		t.Fatal("expected error when waiting on an exhausted bucket with a cancelled context")
	}
}

func TestWaitUnparseableURLUsesFallbackBucket(t *testing.T) {
	l := NewHostLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "::not a url::"); err != nil {
		t.Fatalf("fallback bucket: %v", err)
	}
}
