package infra

import (
	"context"
	"sync"

	"ranking-gateway/gateway/domain"
)

// MemoryStatsStore conta consultas em memória, por status e por origem.
// Útil sem Redis e nos testes. Não expira nada.
type MemoryStatsStore struct {
	mu       sync.Mutex
	byStatus map[domain.LookupStatus]int64
	bySource map[domain.Source]int64
	byKey    map[domain.Key]int64

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byStatus: make(map[domain.LookupStatus]int64),
		bySource: make(map[domain.Source]int64),
		byKey:    make(map[domain.Key]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.LookupEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byStatus[ev.Status]++
	if ev.Source != "" {
		s.bySource[ev.Source]++
	}
	if s.trackKeys && ev.Key != "" {
		s.byKey[ev.Key]++
	}
	return nil
}

// Totals implementa domain.StatsReader: "status:<x>" e "source:<y>".
func (s *MemoryStatsStore) Totals(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.byStatus)+len(s.bySource))
	for k, v := range s.byStatus {
		out["status:"+string(k)] = v
	}
	for k, v := range s.bySource {
		out["source:"+string(k)] = v
	}
	return out, nil
}

func (s *MemoryStatsStore) ByKey() map[domain.Key]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Key]int64, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
