package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/perfdash/internal/api/handlers"
	"github.com/wonny/perfdash/pkg/logger"
)

// Handlers groups the endpoint handlers the router mounts
type Handlers struct {
	Dashboard   handlers.Dashboard
	Performance *handlers.PerformanceHandler
	Stream      *handlers.StreamHandler
	Market      *handlers.MarketHandler
	Scheduler   *handlers.SchedulerHandler
	Cache       CacheStatus
}

// CacheStatus reports the provider cache state on /health
type CacheStatus interface {
	Status(ctx context.Context) string
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing is configured in this function only
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Dashboard, h.Cache)).Methods("GET")

	// API routes stay on the root router: a mux subrouter answers a method mismatch with 404

	// Performance endpoints
	r.HandleFunc("/api/performance", h.Performance.GetPerformance).Methods("GET")
	r.HandleFunc("/api/performance/range", h.Performance.SetRange).Methods("PUT")
	r.HandleFunc("/api/performance/chart.png", h.Performance.GetChart).Methods("GET")
	if h.Stream != nil {
		r.HandleFunc("/api/performance/stream", h.Stream.Stream).Methods("GET")
	}

	if h.Market != nil {
		r.HandleFunc("/api/market/clock", h.Market.GetClock).Methods("GET")
	}
	if h.Scheduler != nil {
		r.HandleFunc("/api/scheduler/jobs", h.Scheduler.GetJobs).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status, the refresh state and the cache state
func healthCheckHandler(dash handlers.Dashboard, cache CacheStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "perfdash",
		}
		if dash != nil {
			snap := dash.Snapshot()
			body["refresh_state"] = snap.State
			body["has_data"] = snap.HasData()
		}
		if cache != nil {
			body["cache"] = cache.Status(r.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
