package scan

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testCache(ttls map[QueryKind]time.Duration) (*Cache, *time.Time) {
	c := NewCache(ttls)
	clock := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	c, _ := testCache(map[QueryKind]time.Duration{KindPrice: 10 * time.Minute})
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, err := GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch)
	if err != nil || v != 42 {
		t.Fatalf("Expected 42, got %d (err %v)", v, err)
	}

	v, err = GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch)
	if err != nil || v != 42 {
		t.Fatalf("Expected cached 42, got %d (err %v)", v, err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", calls)
	}
}

func TestGetOrFetchExpiry(t *testing.T) {
	c, clock := testCache(map[QueryKind]time.Duration{KindPrice: 10 * time.Minute})
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	if v, _ := GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch); v != 1 {
		t.Fatalf("Expected 1, got %d", v)
	}

	*clock = clock.Add(11 * time.Minute)

	if v, _ := GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch); v != 2 {
		t.Errorf("Expected refetch after expiry, got %d", v)
	}
}

func TestGetOrFetchKeysAreIndependent(t *testing.T) {
	c, _ := testCache(map[QueryKind]time.Duration{
		KindPrice:    10 * time.Minute,
		KindOverview: time.Hour,
	})
	ctx := context.Background()

	constant := func(v int) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) { return v, nil }
	}

	GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, constant(1))
	GetOrFetch(ctx, c, "tcbs", "VNM", KindPrice, constant(2))
	GetOrFetch(ctx, c, "cafef", "FPT", KindOverview, constant(3))

	if c.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", c.Len())
	}

	if v, _ := GetOrFetch(ctx, c, "tcbs", "VNM", KindPrice, constant(99)); v != 2 {
		t.Errorf("Expected cached 2 for VNM, got %d", v)
	}
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	c, _ := testCache(map[QueryKind]time.Duration{KindPrice: 10 * time.Minute})
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("upstream down")
		}
		return 7, nil
	}

	if _, err := GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch); err == nil {
		t.Fatal("Expected error from first fetch")
	}
	if v, err := GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch); err != nil || v != 7 {
		t.Errorf("Expected retry to succeed with 7, got %d (err %v)", v, err)
	}
}

func TestGetOrFetchUncacheableKind(t *testing.T) {
	c, _ := testCache(map[QueryKind]time.Duration{KindPrice: 10 * time.Minute})
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	GetOrFetch(ctx, c, "tcbs", "FPT", KindStatement, fetch)
	GetOrFetch(ctx, c, "tcbs", "FPT", KindStatement, fetch)

	if calls != 2 {
		t.Errorf("Expected every call to hit upstream for uncacheable kind, got %d", calls)
	}
	if c.Len() != 0 {
		t.Errorf("Expected no stored entries, got %d", c.Len())
	}
}

func TestFlush(t *testing.T) {
	c, _ := testCache(map[QueryKind]time.Duration{KindPrice: 10 * time.Minute})
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch)
	c.Flush()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after flush, got %d entries", c.Len())
	}
	if v, _ := GetOrFetch(ctx, c, "tcbs", "FPT", KindPrice, fetch); v != 2 {
		t.Errorf("Expected refetch after flush, got %d", v)
	}
}
