package gateway

import (
	"net/http"

	"ranking-gateway/gateway/domain"

	"go.uber.org/zap"
)

// StatusInfo descreve o estado que /health expõe.
type StatusInfo interface {
	Mode() string
}

// SchedulerInfo é a visão da fila do upstream usada por /health.
type SchedulerInfo interface {
	Pending() int
	MaxPending() int
}

type HealthHandler struct {
	Cache     StatusInfo
	Scheduler SchedulerInfo
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "healthy"}
	if h.Cache != nil {
		body["cache"] = h.Cache.Mode()
	}
	if h.Scheduler != nil {
		body["pending"] = h.Scheduler.Pending()
		body["maxPending"] = h.Scheduler.MaxPending()
	}
	writeJSON(w, http.StatusOK, body)
}

// StatsHandler devolve os totais acumulados de consultas ("status:x", "source:y").
type StatsHandler struct {
	Stats domain.StatsReader
	Log   *zap.Logger
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Stats == nil {
		writeJSON(w, http.StatusOK, map[string]int64{})
		return
	}
	totals, err := h.Stats.Totals(r.Context())
	if err != nil {
		if h.Log != nil {
			h.Log.Warn("stats read failed", zap.Error(err))
		}
		writeError(w, http.StatusServiceUnavailable, "STATS_UNAVAILABLE")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
