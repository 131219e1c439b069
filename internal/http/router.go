package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/after-school-classes/internal/idempotency"
	"github.com/robertarktes/after-school-classes/internal/observability"
)

// SetupRouter wires the API. idemp may be nil, which disables replays.
// Static assets are served from staticDir when it is set.
func SetupRouter(h *Handlers, logger observability.Logger, idemp *idempotency.Idempotency, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(CORSMiddleware())
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireStore(h.store, logger))
		r.Get("/lessons", h.ListLessons)
		r.Get("/search", h.SearchLessons)
		r.Put("/lessons/{id}", h.UpdateLesson)
		r.With(IdempotencyMiddleware(idemp, logger)).Post("/orders", h.PlaceOrder)
	})

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return r
}
