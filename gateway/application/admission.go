package application

import (
	"context"
	"time"

	"ranking-gateway/gateway/domain"
)

// RateLimitService decide se um cliente pode fazer mais uma consulta agora.
// Não conhece HTTP: devolve só a decisão e o Retry-After sugerido.
type RateLimitService struct {
	Store domain.LimiterStore
	// RetryAfter sugerido ao bloquear; <= 0 vira 1s.
	RetryAfter time.Duration
}

func (s RateLimitService) Decide(client domain.ClientKey) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	lim := s.Store.Get(client)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}

	wait := s.RetryAfter
	if wait <= 0 {
		wait = time.Second
	}
	return domain.Decision{Allowed: false, RetryAfter: wait}
}

// SlotService limita quantas requisições o gateway atende ao mesmo tempo,
// inclusive as que terminam no cache e nunca chegam à fila do upstream.
type SlotService struct {
	Pool domain.SlotPool
	// Wait <= 0 espera até o ctx do chamador terminar.
	Wait time.Duration
}

// Acquire devolve (release, true) ou (nil, false) se não conseguiu vaga a tempo.
func (s SlotService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.Wait <= 0 {
		return s.Pool.Acquire(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.Wait)
	defer cancel()
	return s.Pool.Acquire(waitCtx)
}
