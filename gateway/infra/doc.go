// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Scheduler: fila FIFO única com cooldown global para o upstream
//   - NexonClient: cliente HTTP do ranking (leitura defensiva com gjson)
//   - RedisCache / MemoryCache / TieredCache: cache em duas camadas
//   - Store: token bucket por cliente usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: contadores de consultas
package infra
