package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ranking-gateway/gateway/domain"
)

type legionCall struct {
	worldID     int
	rebootIndex int
}

// fakeRanking devolve linhas fixas e registra as chamadas recebidas.
type fakeRanking struct {
	overall    *domain.RankRow
	overallErr error
	legion     map[int]*domain.RankRow // por reboot index
	legionErr  error

	// gate, se não nil, segura FetchOverall até ser fechado.
	gate chan struct{}

	overallCalls atomic.Int32
	mu           sync.Mutex
	legionCalls  []legionCall
}

func (f *fakeRanking) FetchOverall(ctx context.Context, name string) (*domain.RankRow, error) {
	f.overallCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.overallErr != nil {
		return nil, f.overallErr
	}
	if f.overall == nil {
		return nil, nil
	}
	row := *f.overall
	return &row, nil
}

func (f *fakeRanking) FetchLegion(ctx context.Context, name string, worldID, rebootIndex int) (*domain.RankRow, error) {
	f.mu.Lock()
	f.legionCalls = append(f.legionCalls, legionCall{worldID: worldID, rebootIndex: rebootIndex})
	f.mu.Unlock()
	if f.legionErr != nil {
		return nil, f.legionErr
	}
	row, ok := f.legion[rebootIndex]
	if !ok || row == nil {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRanking) calls() []legionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]legionCall(nil), f.legionCalls...)
}

// inlineScheduler roda a action na hora e reporta uma espera fixa por chamada.
type inlineScheduler struct {
	queued time.Duration
	err    error
	runs   atomic.Int32
}

func (s *inlineScheduler) Schedule(ctx context.Context, action func(context.Context) error) (time.Duration, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.runs.Add(1)
	return s.queued, action(ctx)
}

// mapCache é um OutcomeCache simples; respeita expiresAt como o cache real.
type mapCache struct {
	mu   sync.Mutex
	data map[domain.Key]domain.Outcome
	now  func() time.Time
	sets atomic.Int32
}

func newMapCache(now func() time.Time) *mapCache {
	return &mapCache{data: make(map[domain.Key]domain.Outcome), now: now}
}

func (c *mapCache) Get(_ context.Context, key domain.Key) (domain.Outcome, domain.Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.data[key]
	if !ok || o.Expired(c.now()) {
		return domain.Outcome{}, domain.SourceNone, false
	}
	return o, domain.SourceFallbackCache, true
}

func (c *mapCache) Set(_ context.Context, key domain.Key, o domain.Outcome) {
	c.sets.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = o
}

func (c *mapCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

type recordingStats struct {
	mu     sync.Mutex
	events []domain.LookupEvent
}

func (s *recordingStats) Record(_ context.Context, ev domain.LookupEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingStats) statuses() []domain.LookupStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LookupStatus, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Status)
	}
	return out
}
