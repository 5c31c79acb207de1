package domain

import (
	"context"
	"time"
)

// Scheduler serializa as chamadas ao upstream respeitando o cooldown global.
//
// Schedule devolve o erro da action e quanto tempo a tarefa esperou na fila.
// Com a fila cheia devolve ErrQueueFull sem enfileirar nada.
type Scheduler interface {
	Schedule(ctx context.Context, action func(context.Context) error) (queued time.Duration, err error)
}

// RankingClient consulta o ranking upstream.
// Um retorno (nil, nil) significa "nenhuma linha".
type RankingClient interface {
	FetchOverall(ctx context.Context, name string) (*RankRow, error)
	FetchLegion(ctx context.Context, name string, worldID, rebootIndex int) (*RankRow, error)
}

// CacheTier é uma camada de armazenamento (Redis, memória...).
// Erros de transporte/parse são devolvidos; quem decide o fallback é o TieredCache.
type CacheTier interface {
	Get(ctx context.Context, key Key) (Outcome, bool, error)
	Set(ctx context.Context, key Key, o Outcome, ttl time.Duration) error
	Delete(ctx context.Context, key Key) error
}

// OutcomeCache é o cache visto pela aplicação: sem erros, só a origem do acerto.
type OutcomeCache interface {
	Get(ctx context.Context, key Key) (Outcome, Source, bool)
	Set(ctx context.Context, key Key, o Outcome)
}
