package domain

import (
	"context"
	"time"
)

// LookupStatus é o desfecho de uma consulta do ponto de vista das estatísticas.
type LookupStatus string

const (
	StatusFound        LookupStatus = "found"
	StatusNotFound     LookupStatus = "not_found"
	StatusInvalid      LookupStatus = "invalid"
	StatusQueueFull    LookupStatus = "queue_full"
	StatusUpstreamFail LookupStatus = "upstream_failure"
)

// LookupEvent registra uma consulta concluída.
//
// Cuidado com cardinalidade: Key só é gravada quando o store foi configurado para isso.
type LookupEvent struct {
	Key    Key
	Status LookupStatus
	Source Source
	At     time.Time
}

// StatsStore persiste estatísticas de consulta (Redis, memória...).
// Quem chama trata erro como best-effort.
type StatsStore interface {
	Record(ctx context.Context, ev LookupEvent) error
}

// StatsReader expõe os totais acumulados por status e por origem.
type StatsReader interface {
	Totals(ctx context.Context) (map[string]int64, error)
}
