// Package application contém os casos de uso do gateway de consulta:
// a borda (Gateway.Lookup), o orquestrador das chamadas ao ranking (Resolver),
// a deduplicação de consultas em andamento (Coordinator) e as regras de
// rate limit e concorrência de entrada.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Gateway.Lookup(ctx, "Luna123") retorna um domain.LookupResult ou um erro tipado.
package application
