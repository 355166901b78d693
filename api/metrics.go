package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the service's prometheus collectors.
type Metrics struct {
	Assessments *prometheus.CounterVec
	Duration    prometheus.Histogram
	Requests    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powercalc",
			Name:      "assessments_total",
			Help:      "Completed assessments by hard verdict and risk level.",
		}, []string{"verdict", "level"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "powercalc",
			Name:      "assessment_duration_seconds",
			Help:      "Wall time of one assessment including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powercalc",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(m.Assessments, m.Duration, m.Requests)
	return m
}
