package application

import (
	"context"
	"time"

	"ranking-gateway/gateway/domain"

	"go.uber.org/zap"
)

// Resolver conduz o protocolo de duas etapas no ranking:
//
//	overall -> (não encontrado | legion reboot=1 -> [legion reboot=0] -> merge)
//
// Toda chamada passa pelo Scheduler. Qualquer falha aborta a consulta inteira
// e nada é gravado no cache.
type Resolver struct {
	Upstream  domain.RankingClient
	Scheduler domain.Scheduler
	Cache     domain.OutcomeCache
	Now       func() time.Time
	Log       *zap.Logger
}

func (r Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r Resolver) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Resolve consulta o upstream para name e grava o desfecho sob key.
// Queued é a soma das esperas na fila das chamadas feitas.
func (r Resolver) Resolve(ctx context.Context, key domain.Key, name string) (domain.Resolution, error) {
	var res domain.Resolution

	overall, err := r.fetch(ctx, &res, func(ctx context.Context) (*domain.RankRow, error) {
		return r.Upstream.FetchOverall(ctx, name)
	})
	if err != nil {
		return domain.Resolution{}, err
	}

	if overall == nil {
		res.Outcome = domain.NotFoundOutcome(name, r.now())
		r.store(ctx, key, res.Outcome)
		return res, nil
	}

	legion, err := r.fetchLegion(ctx, &res, name, overall.WorldID, 1)
	if err != nil {
		return domain.Resolution{}, err
	}
	if legion == nil {
		// reboot e servidores normais são partições diferentes no ranking
		legion, err = r.fetchLegion(ctx, &res, name, overall.WorldID, 0)
		if err != nil {
			return domain.Resolution{}, err
		}
	}

	res.Outcome = domain.FoundOutcome(domain.MergeRows(*overall, legion, r.now()))
	r.store(ctx, key, res.Outcome)
	return res, nil
}

func (r Resolver) fetchLegion(ctx context.Context, res *domain.Resolution, name string, worldID, rebootIndex int) (*domain.RankRow, error) {
	return r.fetch(ctx, res, func(ctx context.Context) (*domain.RankRow, error) {
		return r.Upstream.FetchLegion(ctx, name, worldID, rebootIndex)
	})
}

// fetch agenda uma chamada e acumula a espera em res.Queued.
func (r Resolver) fetch(ctx context.Context, res *domain.Resolution, call func(context.Context) (*domain.RankRow, error)) (*domain.RankRow, error) {
	var row *domain.RankRow
	queued, err := r.Scheduler.Schedule(ctx, func(ctx context.Context) error {
		var err error
		row, err = call(ctx)
		return err
	})
	res.Queued += queued
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r Resolver) store(ctx context.Context, key domain.Key, o domain.Outcome) {
	if r.Cache == nil {
		return
	}
	r.Cache.Set(ctx, key, o)
	r.log().Debug("lookup cached",
		zap.String("key", string(key)),
		zap.Bool("found", o.Found),
		zap.Time("expires_at", o.ExpiresAt),
	)
}
