// Package gateway fornece os adapters HTTP (net/http + chi) do gateway de consulta de ranking.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (consulta, single-flight, orquestração, rate limit) sem net/http
//   - infra: implementações concretas (scheduler, cliente do ranking, Redis, memória, token bucket)
//   - gateway (este pacote): handlers, middlewares e tradução de erros para status/headers
//
// Fluxo de GET /lookup?character_name=...:
//
//  1. Extrai a chave do cliente e aplica rate limit de entrada (429 + Retry-After)
//  2. Reserva uma vaga de concorrência (503 se não houver a tempo)
//  3. Chama application.Gateway.Lookup
//  4. Traduz o resultado: 200 (found/not found), 400, 429 (fila do upstream cheia) ou 502
//
// Variáveis de ambiente do binário (cmd/gateway) controlam o comportamento,
// como UPSTREAM_COOLDOWN, UPSTREAM_MAX_PENDING, RATE_RPS e CONCURRENCY_MAX.
package gateway
