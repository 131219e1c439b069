package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"github.com/robertarktes/after-school-classes/internal/idempotency"
	"github.com/robertarktes/after-school-classes/internal/observability"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelhttp "go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// LoggerMiddleware logs every request before it is dispatched and stores a
// request-scoped logger in the context.
func LoggerMiddleware(logger observability.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := logger.WithField("request_id", middleware.GetReqID(r.Context()))
			entry.WithField("method", r.Method).WithField("path", r.URL.Path).Info("request")
			ctx := observability.ContextWithLogger(r.Context(), entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CORSMiddleware() func(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
	}).Handler
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RequestsTotal.WithLabelValues(route, strconv.Itoa(status), r.Method).Inc()
	})
}

// TracingMiddleware opens one server span per request. The span is renamed
// after routing so that path parameters do not leak into span names.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), otelhttp.HeaderCarrier(r.Header))
		ctx, span := otel.Tracer("http").Start(ctx, r.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		)

		next.ServeHTTP(w, r.WithContext(ctx))

		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			span.SetName(r.Method + " " + rctx.RoutePattern())
			span.SetAttributes(attribute.String("http.route", rctx.RoutePattern()))
		}
	})
}

// RequireStore fails fast when the persistence gateway is not connected.
func RequireStore(store Readiness, logger observability.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Ready() {
				writeError(w, r, logger, domain.ErrServiceUnavailable, "Database not connected")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key. The key is reserved before the handler runs, so a
// concurrent duplicate gets 409 instead of booking twice. Requests without the
// header pass through untouched, and only successful responses are
// remembered; any other outcome releases the key for a retry.
func IdempotencyMiddleware(idemp *idempotency.Idempotency, logger observability.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if idemp == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) < idempotency.MinKeyLength {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid Idempotency-Key"})
				return
			}

			log := observability.LoggerFromContext(r.Context(), logger).WithField("idempotency_key", key)
			reserved, err := idemp.Reserve(r.Context(), key)
			if err != nil {
				log.WithError(err).Error("failed to reserve idempotency key")
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Error placing order"})
				return
			}
			if !reserved {
				replayStored(w, r, idemp, log, key)
				return
			}

			// The outcome is recorded even if the client goes away mid-request.
			storeCtx := context.WithoutCancel(r.Context())
			stored := false
			defer func() {
				if stored {
					return
				}
				if err := idemp.Release(storeCtx, key); err != nil {
					log.WithError(err).Warn("failed to release idempotency key")
				}
			}()

			var body bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status < 200 || status >= 300 {
				return
			}
			if err := idemp.Set(storeCtx, key, idempotency.Response{Status: status, Result: body.Bytes()}); err != nil {
				log.WithError(err).Warn("failed to store idempotent response")
				return
			}
			stored = true
		})
	}
}

func replayStored(w http.ResponseWriter, r *http.Request, idemp *idempotency.Idempotency, log observability.Logger, key string) {
	existing, err := idemp.Get(r.Context(), key)
	if err != nil {
		log.WithError(err).Error("failed to read idempotent response")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Error placing order"})
		return
	}
	// A nil result means the holder released the key between our reserve and read.
	if existing == nil || existing.Pending {
		writeJSON(w, http.StatusConflict, errorBody{Error: "Request in progress"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(existing.Status)
	w.Write(existing.Result)
}
