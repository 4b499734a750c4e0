package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Log     *slog.Logger
	Timeout time.Duration
	// Health is called by /healthz; nil reports ok unconditionally.
	Health func(ctx context.Context) error
}

func NewRouter(opts RouterOptions) *chi.Mux {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Health(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// Mount registers handlers in a group guarded by the API key.
func Mount(r chi.Router, apiKey string, handlers ...interface{ Register(chi.Router) }) {
	r.Group(func(r chi.Router) {
		r.Use(APIKey(apiKey))
		for _, h := range handlers {
			h.Register(r)
		}
	})
}
