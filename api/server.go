// Package api exposes assessments, reference tables and history over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/store"
)

// HistoryReader serves the asset history endpoint. *store.SQLite implements it.
type HistoryReader interface {
	Asset(ctx context.Context, id int64) (*store.Asset, error)
	History(ctx context.Context, assetID int64, limit int) ([]assessment.HistoryRecord, error)
}

// Config wires the router. History may be nil, which disables the history endpoint.
type Config struct {
	Service  *assessment.Service
	History  HistoryReader
	Registry *prometheus.Registry
	Log      logrus.FieldLogger
	// MaxBodyBytes caps request bodies; 0 uses 4 MiB.
	MaxBodyBytes int64
	// AssessRate limits POST /v1/assessments to this many requests per
	// second with AssessBurst burst. 0 disables the limit.
	AssessRate  float64
	AssessBurst int
}

type server struct {
	svc      *assessment.Service
	history  HistoryReader
	metrics  *Metrics
	log      logrus.FieldLogger
	maxBytes int64
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg Config) http.Handler {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 4 << 20
	}
	s := &server{
		svc:      cfg.Service,
		history:  cfg.History,
		metrics:  NewMetrics(reg),
		log:      log,
		maxBytes: maxBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Assessment-Id"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/healthz", s.health)
		r.Route("/v1", func(r chi.Router) {
			r.Get("/tables", s.listTables)
			r.Get("/tables/{profile}", s.getTable)
			r.Get("/curve", s.curvePoints)
			if cfg.AssessRate > 0 {
				burst := max(cfg.AssessBurst, 1)
				r.With(s.rateLimit(rate.NewLimiter(rate.Limit(cfg.AssessRate), burst))).Post("/assessments", s.createAssessment)
			} else {
				r.Post("/assessments", s.createAssessment)
			}
			r.Get("/assets/{assetID}/history", s.assetHistory)
		})
	})
	return r
}

// rateLimit rejects requests with 429 once lim is exhausted.
func (s *server) rateLimit(lim *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				w.Header().Set("Retry-After", "1")
				fail(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs each request and counts it by route pattern.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.Requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"route":      route,
			"status":     status,
			"bytes":      ww.BytesWritten(),
			"elapsed":    time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("http request")
	})
}
