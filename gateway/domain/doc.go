// Package domain define tipos e contratos do gateway de consulta de personagens.
//
// Este pacote não depende de net/http nem de implementações concretas
// (Redis, cliente HTTP do ranking, etc.). A ideia é manter as regras
// testáveis com fakes simples e deixar os detalhes na camada infra.
package domain
