package domain

import "time"

// Source indica de onde veio a resposta de uma consulta.
type Source string

const (
	SourceNone          Source = "none"
	SourcePrimaryCache  Source = "primary_cache"
	SourceFallbackCache Source = "fallback_cache"
	SourceUpstream      Source = "nexon_upstream"
)

// Outcome é o valor guardado no cache: encontrado (Data != nil) ou não encontrado.
// O JSON desta struct é o formato gravado no Redis.
type Outcome struct {
	Found         bool           `json:"found"`
	Data          *CharacterData `json:"data"`
	CharacterName string         `json:"characterName,omitempty"`
	ExpiresAt     time.Time      `json:"expiresAt"`
}

func FoundOutcome(data CharacterData) Outcome {
	return Outcome{Found: true, Data: &data, ExpiresAt: data.ExpiresAt}
}

func NotFoundOutcome(characterName string, fetchedAt time.Time) Outcome {
	return Outcome{CharacterName: characterName, ExpiresAt: NextUTCMidnight(fetchedAt)}
}

// Expired considera expirado a partir do próprio instante de expiração.
func (o Outcome) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// NextUTCMidnight devolve a próxima meia-noite UTC estritamente depois de t.
// O ranking upstream reseta diariamente nesse horário.
func NextUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(24 * time.Hour)
}

// TTLSeconds é o TTL em segundos inteiros até expiresAt, nunca menor que 1.
func TTLSeconds(expiresAt, now time.Time) int64 {
	secs := int64(expiresAt.Sub(now) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Resolution é o resultado de uma resolução no upstream.
// Queued soma as esperas na fila de todas as chamadas feitas (1 a 3).
type Resolution struct {
	Outcome Outcome
	Queued  time.Duration
}

// LookupResult é o que a borda devolve ao chamador.
type LookupResult struct {
	Outcome   Outcome
	FromCache bool
	Queued    time.Duration
	Source    Source
}
