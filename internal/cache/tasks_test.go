package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskdeck/internal/task"
)

func testTasksCache(t *testing.T) (*TasksCache, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	cache := NewTasksCache(NewMemoryStore(), TasksOptions{
		TTL:            30 * time.Second,
		MaxStale:       5 * time.Minute,
		RefreshBackoff: 10 * time.Second,
		RerunDelay:     500 * time.Millisecond,
	}).WithClock(clock.Now)
	return cache, clock
}

func countingFetch(tasks []task.Task, err error) (FetchTasks, *int) {
	calls := 0
	return func(context.Context) ([]task.Task, error) {
		calls++
		return tasks, err
	}, &calls
}

var sample = []task.Task{
	{Path: "notes/a.md", Title: "Alpha"},
	{Path: "notes/b.md", Title: "Beta"},
}

func TestTasksKey(t *testing.T) {
	cases := []struct {
		limit                             int
		includeCompleted, includeArchived bool
		want                              string
	}{
		{400, false, false, "tasks_400"},
		{400, true, false, "tasks_400_completed"},
		{400, false, true, "tasks_400_archived"},
		{100, true, true, "tasks_100_completed_archived"},
	}
	for _, tc := range cases {
		if got := TasksKey(tc.limit, tc.includeCompleted, tc.includeArchived); got != tc.want {
			t.Errorf("TasksKey(%d, %v, %v) = %q, want %q", tc.limit, tc.includeCompleted, tc.includeArchived, got, tc.want)
		}
	}
}

func TestGetColdCacheFetchesForeground(t *testing.T) {
	cache, _ := testTasksCache(t)
	fetch, calls := countingFetch(sample, nil)

	res, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("fetch calls = %d", *calls)
	}
	if res.Stale || res.Rerun != 0 || res.RefreshID != "" {
		t.Fatalf("cold result flagged stale: %+v", res)
	}
	if len(res.Tasks) != 2 {
		t.Fatalf("tasks = %v", res.Tasks)
	}
}

func TestGetFreshServesWithoutFetch(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, calls := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock.Advance(10 * time.Second)
	res, err := cache.Get(context.Background(), "tasks_400", func(context.Context) ([]task.Task, error) {
		t.Fatal("fetch called for fresh entry")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.Stale || res.RefreshID != "" {
		t.Fatalf("fresh result flagged stale: %+v", res)
	}
	if *calls != 1 {
		t.Fatalf("fetch calls = %d", *calls)
	}
}

func TestGetStaleClaimsSingleRefresh(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, calls := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock.Advance(time.Minute) // past TTL, within max-stale

	res, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !res.Stale {
		t.Fatal("stale entry not flagged")
	}
	if res.RefreshID == "" {
		t.Fatal("first stale read did not claim the refresh")
	}
	if res.Rerun != 500*time.Millisecond {
		t.Fatalf("rerun = %v", res.Rerun)
	}
	if *calls != 1 {
		t.Fatal("stale read must not fetch in the foreground")
	}

	// A second read inside the backoff window serves stale without claiming.
	clock.Advance(time.Second)
	res2, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if !res2.Stale || res2.RefreshID != "" || res2.Rerun != 0 {
		t.Fatalf("backoff window result: %+v", res2)
	}

	// Past the backoff window the claim is available again.
	clock.Advance(15 * time.Second)
	res3, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("third Get: %v", err)
	}
	if res3.RefreshID == "" {
		t.Fatal("refresh slot not reclaimed after backoff")
	}
	if res3.RefreshID == res.RefreshID {
		t.Fatal("reclaimed refresh reused the old request id")
	}
}

func TestGetPastMaxStaleFetchesForeground(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, calls := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock.Advance(10 * time.Minute)
	res, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *calls != 2 {
		t.Fatalf("fetch calls = %d, want foreground refresh", *calls)
	}
	if res.Stale {
		t.Fatal("foreground-refreshed result flagged stale")
	}
}

func TestGetFallsBackToStaleOnFetchFailure(t *testing.T) {
	cache, clock := testTasksCache(t)
	seed, _ := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock.Advance(10 * time.Minute)
	failing, _ := countingFetch(nil, errors.New("connection refused"))
	res, err := cache.Get(context.Background(), "tasks_400", failing)
	if err != nil {
		t.Fatalf("Get should fall back to stale snapshot: %v", err)
	}
	if !res.Stale || len(res.Tasks) != 2 {
		t.Fatalf("fallback result: %+v", res)
	}
	if res.Rerun != 500*time.Millisecond {
		t.Fatalf("fallback rerun = %v", res.Rerun)
	}
}

func TestGetColdMissWithFailedFetchErrors(t *testing.T) {
	cache, _ := testTasksCache(t)
	failing, _ := countingFetch(nil, errors.New("connection refused"))
	if _, err := cache.Get(context.Background(), "tasks_400", failing); err == nil {
		t.Fatal("cold miss with failed fetch must error")
	}
}

func TestRefreshStoresAndClearsClaim(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, _ := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock.Advance(time.Minute)
	res, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil || res.RefreshID == "" {
		t.Fatalf("claim: (%+v, %v)", res, err)
	}

	fresh := []task.Task{{Path: "notes/c.md", Title: "Gamma"}}
	refetch, _ := countingFetch(fresh, nil)
	if err := cache.Refresh(context.Background(), "tasks_400", res.RefreshID, refetch); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	after, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
	if after.Stale || len(after.Tasks) != 1 || after.Tasks[0].Title != "Gamma" {
		t.Fatalf("refreshed entry not served: %+v", after)
	}
}

func TestRefreshSkipsSupersededRequest(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, _ := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}
	clock.Advance(time.Minute)
	res, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil || res.RefreshID == "" {
		t.Fatalf("claim: (%+v, %v)", res, err)
	}

	called := false
	err = cache.Refresh(context.Background(), "tasks_400", "stale-request-id", func(context.Context) ([]task.Task, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("superseded Refresh: %v", err)
	}
	if called {
		t.Fatal("superseded refresh still fetched")
	}
}

func TestRefreshFailureReleasesClaim(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, _ := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}
	clock.Advance(time.Minute)
	res, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil || res.RefreshID == "" {
		t.Fatalf("claim: (%+v, %v)", res, err)
	}

	failing, _ := countingFetch(nil, errors.New("timeout"))
	if err := cache.Refresh(context.Background(), "tasks_400", res.RefreshID, failing); err == nil {
		t.Fatal("failed refresh must report its error")
	}

	// The claim is released, so the next stale read wins a new one without
	// waiting out the backoff.
	clock.Advance(time.Second)
	res2, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("Get after failed refresh: %v", err)
	}
	if res2.RefreshID == "" {
		t.Fatal("claim not released after failed refresh")
	}
}

func TestPeekIgnoresAge(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, _ := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}
	clock.Advance(24 * time.Hour)
	tasks, ok := cache.Peek("tasks_400")
	if !ok || len(tasks) != 2 {
		t.Fatalf("Peek = (%v, %v)", tasks, ok)
	}
	if _, ok := cache.Peek("tasks_999"); ok {
		t.Fatal("Peek hit for unknown key")
	}
}

func TestInvalidateDropsEntryAndState(t *testing.T) {
	cache, clock := testTasksCache(t)
	fetch, calls := countingFetch(sample, nil)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("seed: %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := cache.Get(context.Background(), "tasks_400", fetch); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := cache.Invalidate("tasks_400"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := cache.Peek("tasks_400"); ok {
		t.Fatal("entry survived Invalidate")
	}

	// With the state gone the next read is a cold foreground fetch.
	before := *calls
	res, err := cache.Get(context.Background(), "tasks_400", fetch)
	if err != nil {
		t.Fatalf("Get after Invalidate: %v", err)
	}
	if *calls != before+1 || res.Stale {
		t.Fatalf("post-invalidate read: calls=%d stale=%v", *calls, res.Stale)
	}
}
