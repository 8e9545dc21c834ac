package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeCounter struct {
	counts    map[string]int64
	expiries  map[string]time.Duration
	incrErr   error
	expireErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expiries: map[string]time.Duration{}}
}

func (f *fakeCounter) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key] += val
	return f.counts[key], nil
}

func (f *fakeCounter) ExpireNX(_ context.Context, key string, ttl time.Duration) error {
	if f.expireErr != nil {
		return f.expireErr
	}
	if _, ok := f.expiries[key]; !ok {
		f.expiries[key] = ttl
	}
	return nil
}

func newTestRedis(counter Counter, quotas Quotas) *Redis {
	lim := NewRedis(counter, quotas, "test:rl:")
	lim.now = func() time.Time { return time.Date(2025, 6, 1, 14, 20, 0, 0, time.UTC) }
	return lim
}

func TestRedisAllowsUnderQuota(t *testing.T) {
	counter := newFakeCounter()
	lim := newTestRedis(counter, Quotas{Anonymous: 2, Authenticated: 5, Window: time.Hour})

	dec, err := lim.Decide(context.Background(), "pk_live_abc")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !dec.Allowed {
		t.Error("first request rejected")
	}
	if dec.Remaining != 4 {
		t.Errorf("Remaining = %d, want 4", dec.Remaining)
	}
}

func TestRedisRejectsOverQuota(t *testing.T) {
	counter := newFakeCounter()
	lim := newTestRedis(counter, Quotas{Anonymous: 2, Authenticated: 5, Window: time.Hour})

	var last bool
	for i := 0; i < 3; i++ {
		dec, err := lim.Decide(context.Background(), "")
		if err != nil {
			t.Fatalf("Decide: %v", err)
		}
		last = dec.Allowed
	}
	if last {
		t.Error("third anonymous request allowed, quota is 2")
	}
}

func TestRedisRemainingFloorsAtZero(t *testing.T) {
	counter := newFakeCounter()
	lim := newTestRedis(counter, Quotas{Anonymous: 1, Authenticated: 5, Window: time.Hour})

	for i := 0; i < 3; i++ {
		dec, err := lim.Decide(context.Background(), "")
		if err != nil {
			t.Fatalf("Decide: %v", err)
		}
		if dec.Remaining < 0 {
			t.Errorf("Remaining = %d, want >= 0", dec.Remaining)
		}
	}
}

func TestRedisBucketsAnonymousTogether(t *testing.T) {
	counter := newFakeCounter()
	lim := newTestRedis(counter, Quotas{Anonymous: 10, Authenticated: 10, Window: time.Hour})

	if _, err := lim.Decide(context.Background(), ""); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if len(counter.counts) != 1 {
		t.Fatalf("counts = %v, want one key", counter.counts)
	}
	for key := range counter.counts {
		if !strings.Contains(key, "anonymous") {
			t.Errorf("key = %q, want anonymous bucket", key)
		}
		if !strings.HasPrefix(key, "test:rl:") {
			t.Errorf("key = %q, want prefix test:rl:", key)
		}
	}
}

func TestRedisKeyIncludesWindow(t *testing.T) {
	counter := newFakeCounter()
	lim := newTestRedis(counter, Quotas{Anonymous: 10, Authenticated: 10, Window: time.Hour})

	if _, err := lim.Decide(context.Background(), "pk_test_x"); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	windowStart := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	want := fmt.Sprintf("test:rl:pk_test_x:%d", windowStart.Unix())
	if _, ok := counter.counts[want]; !ok {
		t.Errorf("counts = %v, want key %q", counter.counts, want)
	}
}

func TestRedisCounterFailureSurfaces(t *testing.T) {
	counter := newFakeCounter()
	counter.incrErr = errors.New("connection refused")
	lim := newTestRedis(counter, Quotas{Anonymous: 10, Authenticated: 10, Window: time.Hour})

	if _, err := lim.Decide(context.Background(), ""); err == nil {
		t.Error("Decide returned nil error on counter failure")
	}
}
