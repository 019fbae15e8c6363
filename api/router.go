// Package api serves the growth analysis and catalogue reports over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cine-insights/config"
	"cine-insights/logging"
	"cine-insights/metrics"
	"cine-insights/storage"
)

// Source is the storage the API reads from
type Source interface {
	storage.TitleSource
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the HTTP handlers
type Handler struct {
	source   Source
	defaults config.ReportConfig
}

func NewHandler(source Source, defaults config.ReportConfig) *Handler {
	return &Handler{source: source, defaults: defaults}
}

// NewRouter wires every route onto a chi router
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/growth", func(r chi.Router) {
		r.Get("/", h.Growth)
		r.Get("/top", h.TopGrowth)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/kinds", h.Kinds)
		r.Get("/ratings", h.Ratings)
		r.Get("/countries", h.Countries)
		r.Get("/genres", h.Genres)
		r.Get("/durations", h.Durations)
		r.Get("/keywords", h.Keywords)
	})

	return r
}

// requestMetrics records request counts and latency per route pattern
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(route, r.Method, status, time.Since(start))

		logging.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}
