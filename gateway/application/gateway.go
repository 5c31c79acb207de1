package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"ranking-gateway/gateway/domain"
	"ranking-gateway/gateway/metrics"

	"go.uber.org/zap"
)

const DefaultMinNameLength = 3

// Gateway é a regra de borda da consulta: valida, lê o cache e, no miss,
// delega ao Coordinator com o Resolver como cálculo.
// Use sempre por ponteiro: o Coordinator interno não pode ser copiado.
type Gateway struct {
	Cache    domain.OutcomeCache
	Resolver Resolver
	Stats    domain.StatsStore

	// MinNameLength em runas; <= 0 usa DefaultMinNameLength.
	MinNameLength int
	Now           func() time.Time
	Log           *zap.Logger

	flight Coordinator
}

func (g *Gateway) log() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}

func (g *Gateway) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Gateway) minLength() int {
	if g.MinNameLength <= 0 {
		return DefaultMinNameLength
	}
	return g.MinNameLength
}

// Lookup resolve raw em um LookupResult.
//
// Erros: domain.ErrInvalidInput, domain.ErrQueueFull, *domain.UpstreamError,
// ou o erro do ctx se o chamador desistir antes da resolução terminar.
func (g *Gateway) Lookup(ctx context.Context, raw string) (domain.LookupResult, error) {
	name := strings.TrimSpace(raw)
	if name == "" || domain.NameLength(name) < g.minLength() {
		g.record(ctx, "", domain.StatusInvalid, "")
		return domain.LookupResult{}, domain.ErrInvalidInput
	}
	key := domain.NormalizeKey(name)

	if g.Cache != nil {
		if o, src, ok := g.Cache.Get(ctx, key); ok {
			g.record(ctx, key, statusOf(o), src)
			return domain.LookupResult{Outcome: o, FromCache: true, Source: src}, nil
		}
	}

	res, shared, err := g.flight.Do(ctx, key, func(ctx context.Context) (domain.Resolution, error) {
		return g.Resolver.Resolve(ctx, key, name)
	})
	if err != nil {
		status := domain.StatusUpstreamFail
		if errors.Is(err, domain.ErrQueueFull) {
			status = domain.StatusQueueFull
		}
		g.record(ctx, key, status, "")
		g.log().Warn("lookup failed",
			zap.String("key", string(key)),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		return domain.LookupResult{}, err
	}

	g.record(ctx, key, statusOf(res.Outcome), domain.SourceUpstream)
	return domain.LookupResult{
		Outcome: res.Outcome,
		Queued:  res.Queued,
		Source:  domain.SourceUpstream,
	}, nil
}

func statusOf(o domain.Outcome) domain.LookupStatus {
	if o.Found {
		return domain.StatusFound
	}
	return domain.StatusNotFound
}

// record é best-effort: falha de estatística nunca afeta a resposta.
func (g *Gateway) record(ctx context.Context, key domain.Key, status domain.LookupStatus, src domain.Source) {
	label := string(src)
	if label == "" {
		label = string(domain.SourceNone)
	}
	metrics.LookupsTotal.WithLabelValues(string(status), label).Inc()

	if g.Stats == nil {
		return
	}
	ev := domain.LookupEvent{Key: key, Status: status, Source: src, At: g.now()}
	if err := g.Stats.Record(context.WithoutCancel(ctx), ev); err != nil {
		g.log().Debug("stats record failed", zap.Error(err))
	}
}
