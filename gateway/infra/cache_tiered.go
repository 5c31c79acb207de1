package infra

import (
	"context"
	"time"

	"ranking-gateway/gateway/domain"
	"ranking-gateway/gateway/metrics"

	"go.uber.org/zap"
)

// TieredCache aplica a política fixa de duas camadas: primária (Redis) e, só
// quando ela falha ou não está configurada, a local. Implementa domain.OutcomeCache
// e nunca devolve erro: falhas viram log e fallback.
type TieredCache struct {
	primary  domain.CacheTier
	fallback domain.CacheTier
	log      *zap.Logger
	now      func() time.Time
}

type TieredCacheOption func(*TieredCache)

func WithTieredLogger(l *zap.Logger) TieredCacheOption {
	return func(c *TieredCache) { c.log = l }
}

// NewTieredCache aceita primary nil (modo só memória).
func NewTieredCache(primary, fallback domain.CacheTier, opts ...TieredCacheOption) *TieredCache {
	if fallback == nil {
		fallback = NewMemoryCache()
	}
	c := &TieredCache{
		primary:  primary,
		fallback: fallback,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode descreve as camadas ativas (usado no /health).
func (c *TieredCache) Mode() string {
	if c.primary == nil {
		return "memory"
	}
	return "redis+memory"
}

func (c *TieredCache) Get(ctx context.Context, key domain.Key) (domain.Outcome, domain.Source, bool) {
	if c.primary != nil {
		o, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			return c.fresh(ctx, c.primary, key, o, ok, domain.SourcePrimaryCache)
		}
		metrics.CacheFallbackTotal.WithLabelValues("get").Inc()
		c.log.Warn("primary cache get failed, using fallback", zap.String("key", string(key)), zap.Error(err))
	}

	o, ok, err := c.fallback.Get(ctx, key)
	if err != nil {
		c.log.Warn("fallback cache get failed", zap.String("key", string(key)), zap.Error(err))
		return domain.Outcome{}, domain.SourceNone, false
	}
	return c.fresh(ctx, c.fallback, key, o, ok, domain.SourceFallbackCache)
}

func (c *TieredCache) fresh(ctx context.Context, tier domain.CacheTier, key domain.Key, o domain.Outcome, ok bool, src domain.Source) (domain.Outcome, domain.Source, bool) {
	if !ok {
		return domain.Outcome{}, domain.SourceNone, false
	}
	if o.Expired(c.now()) {
		if err := tier.Delete(ctx, key); err != nil {
			c.log.Debug("delete expired entry failed", zap.String("key", string(key)), zap.Error(err))
		}
		return domain.Outcome{}, domain.SourceNone, false
	}
	return o, src, true
}

// Set grava em exatamente uma camada: a primária, ou a local se a primária falhar.
func (c *TieredCache) Set(ctx context.Context, key domain.Key, o domain.Outcome) {
	ttl := time.Duration(domain.TTLSeconds(o.ExpiresAt, c.now())) * time.Second

	if c.primary != nil {
		err := c.primary.Set(ctx, key, o, ttl)
		if err == nil {
			return
		}
		metrics.CacheFallbackTotal.WithLabelValues("set").Inc()
		c.log.Warn("primary cache set failed, using fallback", zap.String("key", string(key)), zap.Error(err))
	}

	if err := c.fallback.Set(ctx, key, o, ttl); err != nil {
		c.log.Error("fallback cache set failed", zap.String("key", string(key)), zap.Error(err))
	}
}
