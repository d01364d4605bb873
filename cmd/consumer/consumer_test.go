package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tdenemark/hokieride/internal/models"
)

// fakeInvalidator implements CacheInvalidator for tests
type fakeInvalidator struct {
	failDel  int // number of times to fail Del before succeeding
	delCalls int
	lastKey  string
}

func (f *fakeInvalidator) Del(ctx context.Context, key string) error {
	f.delCalls++
	f.lastKey = key
	if f.delCalls <= f.failDel {
		return errors.New("del fail")
	}
	return nil
}

func TestInvalidateWithRetry_SucceedsAfterRetries(t *testing.T) {
	f := &fakeInvalidator{failDel: 1}
	ctx := context.Background()
	start := time.Now()
	if err := invalidateWithRetry(ctx, f, models.DirectionToNOVA, 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got err=%v", err)
	}
	if f.delCalls < 2 {
		t.Fatalf("expected retries, got %d calls", f.delCalls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected at least one backoff")
	}
	if f.lastKey != listingKeyPrefix+string(models.DirectionToNOVA) {
		t.Fatalf("unexpected cache key %q", f.lastKey)
	}
}

func TestInvalidateWithRetry_FailsWhenExhausted(t *testing.T) {
	f := &fakeInvalidator{failDel: 5}
	ctx := context.Background()
	if err := invalidateWithRetry(ctx, f, models.DirectionToCampus, 3, 5*time.Millisecond); err == nil {
		t.Fatalf("expected error after retries")
	}
}
