package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps reúne o que o router precisa; campos nil desligam a rota ou o middleware.
type Deps struct {
	Lookup      *LookupHandler
	Health      *HealthHandler
	Stats       *StatsHandler
	RateLimit   RateLimitOptions
	Concurrency ConcurrencyOptions
}

// NewRouter monta as rotas públicas. O rate limit de entrada só vale para /lookup.
func NewRouter(log *zap.Logger, deps Deps) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(Metrics)
	r.Use(Logging(log))

	if deps.Health != nil {
		r.Method(http.MethodGet, "/health", deps.Health)
	}
	r.Handle("/metrics", promhttp.Handler())
	if deps.Stats != nil {
		r.Method(http.MethodGet, "/stats", deps.Stats)
	}

	if deps.Lookup != nil {
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(deps.RateLimit))
			r.Use(Concurrency(deps.Concurrency))
			r.Method(http.MethodGet, "/lookup", deps.Lookup)
		})
	}

	return r
}
