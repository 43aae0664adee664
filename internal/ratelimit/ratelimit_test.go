package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBurstThenThrottle(t *testing.T) {
	l := New(60) // 1 rps, burst 6

	allowed := 0
	for i := 0; i < 20; i++ {
		if l.Allow() {
			allowed++
		}
	}
	if allowed < 1 || allowed > 6 {
		t.Errorf("allowed %d calls up front, want within burst of 6", allowed)
	}
}

func TestMinimumBurstOfOne(t *testing.T) {
	l := New(5) // burst would round to 0 without the floor

	if !l.Allow() {
		t.Error("first call must pass even at tiny quotas")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New(6) // 0.1 rps after the burst is spent
	for l.Allow() {
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("Wait should fail once the deadline passes")
	}
}
