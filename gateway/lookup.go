package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ranking-gateway/gateway/domain"

	"go.uber.org/zap"
)

const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeQueueFull       = "QUEUE_FULL"
	CodeUpstreamFailure = "UPSTREAM_FAILURE"
)

// Lookuper é o caso de uso consumido pelo handler (application.Gateway).
type Lookuper interface {
	Lookup(ctx context.Context, raw string) (domain.LookupResult, error)
}

// RetryAdvisor sugere o Retry-After quando a fila do upstream está cheia.
type RetryAdvisor interface {
	RetryAfter() time.Duration
}

// LookupHandler atende GET /lookup?character_name=.
type LookupHandler struct {
	Lookup Lookuper
	Retry  RetryAdvisor
	Log    *zap.Logger
}

type lookupResponse struct {
	Found         bool                  `json:"found"`
	CharacterName string                `json:"characterName,omitempty"`
	Data          *domain.CharacterData `json:"data"`
	ExpiresAt     time.Time             `json:"expiresAt"`
	FromCache     bool                  `json:"fromCache"`
	QueuedMs      int64                 `json:"queuedMs"`
	Source        domain.Source         `json:"source"`
}

func newLookupResponse(res domain.LookupResult) lookupResponse {
	out := lookupResponse{
		Found:     res.Outcome.Found,
		ExpiresAt: res.Outcome.ExpiresAt,
		FromCache: res.FromCache,
		QueuedMs:  res.Queued.Milliseconds(),
		Source:    res.Source,
	}
	if res.Outcome.Found {
		out.Data = res.Outcome.Data
	} else {
		out.CharacterName = res.Outcome.CharacterName
	}
	return out
}

func (h *LookupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Lookup.Lookup(r.Context(), r.URL.Query().Get("character_name"))
	if err == nil {
		writeJSON(w, http.StatusOK, newLookupResponse(res))
		return
	}

	var ue *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, CodeInvalidInput)
	case errors.Is(err, domain.ErrQueueFull):
		wait := time.Second
		if h.Retry != nil {
			wait = h.Retry.RetryAfter()
		}
		w.Header().Set("Retry-After", retryAfterSeconds(wait))
		writeError(w, http.StatusTooManyRequests, CodeQueueFull)
	case errors.As(err, &ue):
		writeError(w, http.StatusBadGateway, ue.Code())
	default:
		if h.Log != nil {
			h.Log.Warn("lookup failed", zap.Error(err))
		}
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure)
	}
}
