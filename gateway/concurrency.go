package gateway

import (
	"net/http"
	"time"

	"ranking-gateway/gateway/application"
	"ranking-gateway/gateway/infra"
)

const CodeBusy = "BUSY"

type ConcurrencyOptions struct {
	Max int
	// Wait <= 0 espera até o cliente desistir.
	Wait time.Duration
}

// Concurrency limita requisições simultâneas; sem vaga a tempo responde 503.
func Concurrency(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	svc := application.SlotService{
		Pool: infra.NewChanPool(opts.Max),
		Wait: opts.Wait,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				writeError(w, http.StatusServiceUnavailable, CodeBusy)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
