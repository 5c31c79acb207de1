package application

import (
	"context"

	"ranking-gateway/gateway/domain"

	"golang.org/x/sync/singleflight"
)

// Coordinator garante no máximo uma resolução em andamento por chave.
// Quem chega enquanto há uma em curso recebe o mesmo resultado (ou o mesmo erro).
type Coordinator struct {
	group singleflight.Group
}

// Do junta-se à resolução em andamento para key ou inicia uma nova com compute.
//
// compute roda com um contexto desligado do cancelamento do primeiro chamador:
// um cliente que desiste não derruba a resolução dos demais. Se ctx terminar
// antes do resultado, Do devolve ctx.Err() e a resolução segue em segundo plano.
// O shared indica se o resultado foi compartilhado com outros chamadores.
func (c *Coordinator) Do(ctx context.Context, key domain.Key, compute func(context.Context) (domain.Resolution, error)) (res domain.Resolution, shared bool, err error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key), func() (any, error) {
		return compute(detached)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return domain.Resolution{}, r.Shared, r.Err
		}
		return r.Val.(domain.Resolution), r.Shared, nil
	case <-ctx.Done():
		return domain.Resolution{}, false, ctx.Err()
	}
}

// Forget remove a chave do grupo; a próxima chamada inicia uma resolução nova.
func (c *Coordinator) Forget(key domain.Key) {
	c.group.Forget(string(key))
}
