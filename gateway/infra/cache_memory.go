package infra

import (
	"context"
	"sync"
	"time"

	"ranking-gateway/gateway/domain"
)

// MemoryCache é a camada local do processo, usada quando o Redis falha ou não existe.
//
// Não há limpeza em background: entradas vencidas saem na próxima leitura
// ou quando o limite de entradas força uma remoção.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[domain.Key]memoryEntry
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	outcome   domain.Outcome
	expiresAt time.Time
}

type MemoryCacheOption func(*MemoryCache)

// WithMaxEntries limita o tamanho do cache; 0 desliga o limite.
func WithMaxEntries(n int) MemoryCacheOption {
	return func(c *MemoryCache) { c.maxEntries = n }
}

func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[domain.Key]memoryEntry),
		maxEntries: 10000,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key domain.Key) (domain.Outcome, bool, error) {
	c.mu.RLock()
	ent, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return domain.Outcome{}, false, nil
	}

	if !c.now().Before(ent.expiresAt) {
		c.mu.Lock()
		// pode ter sido regravada entre os locks
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return domain.Outcome{}, false, nil
	}
	return ent.outcome, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key domain.Key, o domain.Outcome, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictSoonest()
	}
	c.entries[key] = memoryEntry{outcome: o, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key domain.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictSoonest remove a entrada mais próxima de expirar. Chamar com o lock.
func (c *MemoryCache) evictSoonest() {
	var victim domain.Key
	var soonest time.Time
	found := false
	for k, ent := range c.entries {
		if !found || ent.expiresAt.Before(soonest) {
			victim, soonest, found = k, ent.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}
