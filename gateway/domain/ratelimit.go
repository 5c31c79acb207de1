package domain

// Contratos do rate limit de entrada (por cliente) do endpoint de consulta.
// Não confundir com o cooldown do upstream: aquele é global, este é por chave de cliente.

import "time"

// ClientKey identifica quem chama o gateway (IP, header de API key...).
type ClientKey string

// Limiter representa algo que pode decidir se uma ação é permitida agora.
//
// A camada de infra usa golang.org/x/time/rate (token bucket).
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave de cliente.
type LimiterStore interface {
	Get(ClientKey) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
