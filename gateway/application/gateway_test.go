package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ranking-gateway/gateway/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(up *fakeRanking, sched domain.Scheduler, cache *mapCache, stats domain.StatsStore) *Gateway {
	return &Gateway{
		Cache:    cache,
		Resolver: newResolver(up, sched, cache),
		Stats:    stats,
		Now:      clock,
	}
}

func TestGateway_RejectsShortOrEmptyNames(t *testing.T) {
	up := &fakeRanking{overall: lunaOverall()}
	stats := &recordingStats{}
	g := newGateway(up, &inlineScheduler{}, newMapCache(clock), stats)

	for _, raw := range []string{"", "   ", "ab", " ab ", "é"} {
		_, err := g.Lookup(context.Background(), raw)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %q", raw)
	}
	assert.Equal(t, int32(0), up.overallCalls.Load())
	assert.Len(t, stats.statuses(), 5)
}

func TestGateway_MinNameLengthCountsRunes(t *testing.T) {
	g := newGateway(&fakeRanking{}, &inlineScheduler{}, newMapCache(clock), nil)

	_, err := g.Lookup(context.Background(), "Ñoé")
	require.NoError(t, err)
}

func TestGateway_SecondLookupIsServedFromCache(t *testing.T) {
	up := &fakeRanking{
		overall: lunaOverall(),
		legion:  map[int]*domain.RankRow{0: {Rank: 42, Gap: 9, Score: 500}},
	}
	sched := &inlineScheduler{queued: 20 * time.Millisecond}
	stats := &recordingStats{}
	g := newGateway(up, sched, newMapCache(clock), stats)

	first, err := g.Lookup(context.Background(), "Luna123")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, domain.SourceUpstream, first.Source)
	assert.Equal(t, 60*time.Millisecond, first.Queued)
	require.True(t, first.Outcome.Found)
	assert.Equal(t, int64(9), *first.Outcome.Data.LegionGap)

	second, err := g.Lookup(context.Background(), "  LUNA123 ")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, time.Duration(0), second.Queued)
	assert.Equal(t, domain.SourceFallbackCache, second.Source)
	assert.Equal(t, first.Outcome, second.Outcome)

	assert.Equal(t, int32(1), up.overallCalls.Load())
	assert.Equal(t, int32(3), sched.runs.Load())
	assert.Equal(t, []domain.LookupStatus{domain.StatusFound, domain.StatusFound}, stats.statuses())
}

func TestGateway_NegativeResultIsCachedUntilMidnight(t *testing.T) {
	now := fixedNow
	var mu sync.Mutex
	clk := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	up := &fakeRanking{}
	cache := newMapCache(clk)
	g := &Gateway{
		Cache:    cache,
		Resolver: Resolver{Upstream: up, Scheduler: &inlineScheduler{}, Cache: cache, Now: clk},
		Now:      clk,
	}

	res, err := g.Lookup(context.Background(), "Ghost")
	require.NoError(t, err)
	assert.False(t, res.Outcome.Found)

	mu.Lock()
	now = time.Date(2026, 5, 1, 23, 59, 59, 0, time.UTC)
	mu.Unlock()
	res, err = g.Lookup(context.Background(), "ghost")
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, int32(1), up.overallCalls.Load())

	mu.Lock()
	now = time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	mu.Unlock()
	res, err = g.Lookup(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, res.FromCache, "expired at midnight")
	assert.Equal(t, int32(2), up.overallCalls.Load())
}

func TestGateway_FailureIsRetriedFromScratch(t *testing.T) {
	up := &fakeRanking{overallErr: &domain.UpstreamError{Status: 500}}
	stats := &recordingStats{}
	g := newGateway(up, &inlineScheduler{}, newMapCache(clock), stats)

	_, err := g.Lookup(context.Background(), "Luna123")
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "UPSTREAM_500", ue.Code())

	up.overallErr = nil
	up.overall = lunaOverall()
	res, err := g.Lookup(context.Background(), "Luna123")
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(2), up.overallCalls.Load())
	assert.Equal(t, []domain.LookupStatus{domain.StatusUpstreamFail, domain.StatusFound}, stats.statuses())
}

func TestGateway_QueueFullIsDistinct(t *testing.T) {
	stats := &recordingStats{}
	g := newGateway(&fakeRanking{}, &inlineScheduler{err: domain.ErrQueueFull}, newMapCache(clock), stats)

	_, err := g.Lookup(context.Background(), "Luna123")
	assert.ErrorIs(t, err, domain.ErrQueueFull)
	assert.Equal(t, []domain.LookupStatus{domain.StatusQueueFull}, stats.statuses())
}

func TestGateway_ConcurrentIdenticalLookupsCollapse(t *testing.T) {
	const callers = 20
	up := &fakeRanking{overall: lunaOverall(), gate: make(chan struct{})}
	g := newGateway(up, &inlineScheduler{}, newMapCache(clock), nil)

	var wg sync.WaitGroup
	results := make([]domain.LookupResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "Luna123"
			if i%2 == 0 {
				name = " luna123"
			}
			results[i], errs[i] = g.Lookup(context.Background(), name)
		}(i)
	}

	// todos entram no single-flight antes do upstream responder
	waitUntil(t, func() bool { return up.overallCalls.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	close(up.gate)
	wg.Wait()

	assert.Equal(t, int32(1), up.overallCalls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Outcome, results[i].Outcome)
	}
}

func TestGateway_ConcurrentFailureIsShared(t *testing.T) {
	const callers = 5
	boom := &domain.UpstreamError{Status: 502}
	up := &fakeRanking{overallErr: boom, gate: make(chan struct{})}
	g := newGateway(up, &inlineScheduler{}, newMapCache(clock), nil)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Lookup(context.Background(), "Luna123")
		}(i)
	}
	waitUntil(t, func() bool { return up.overallCalls.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	close(up.gate)
	wg.Wait()

	for _, err := range errs {
		assert.True(t, errors.Is(err, boom))
	}
	assert.Equal(t, int32(1), up.overallCalls.Load())
}

func TestGateway_CallerCancelDoesNotAbortResolution(t *testing.T) {
	up := &fakeRanking{overall: lunaOverall(), gate: make(chan struct{})}
	cache := newMapCache(clock)
	g := newGateway(up, &inlineScheduler{}, cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := g.Lookup(ctx, "Luna123")
		done <- err
	}()
	waitUntil(t, func() bool { return up.overallCalls.Load() == 1 })

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(up.gate)
	waitUntil(t, func() bool { return cache.len() == 1 })
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
