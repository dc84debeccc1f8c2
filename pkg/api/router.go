package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metrics"
)

// readinessTimeout bounds one readiness ping.
const readinessTimeout = 5 * time.Second

// Healthchecker is the part of the metadata store the readiness probe uses.
type Healthchecker interface {
	Healthcheck(ctx context.Context) error
}

// NewRouter wires the ops routes:
//
//	GET /healthz        liveness, always 200
//	GET /healthz/ready  pings the metadata store, 503 on failure
//	GET /metrics        Prometheus exposition, 404 when metrics are off
func NewRouter(checker Healthchecker) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/healthz", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, healthy(map[string]string{"service": "badgehub"}))
		})
		r.Get("/ready", readiness(checker))
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}

func readiness(checker Healthchecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			writeJSON(w, http.StatusServiceUnavailable, unhealthy("metadata store not initialized"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		start := time.Now()
		if err := checker.Healthcheck(ctx); err != nil {
			logger.WarnCtx(ctx, "Readiness check failed", logger.Err(err))
			writeJSON(w, http.StatusServiceUnavailable, unhealthy(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, healthy(map[string]string{
			"latency": time.Since(start).String(),
		}))
	}
}

// requestLogger logs completed requests at DEBUG; probes are frequent.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debug("Ops request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			logger.KeyPath, r.URL.Path,
			"status", ww.Status(),
			logger.Elapsed(start),
		)
	})
}
