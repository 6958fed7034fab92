package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	validationsTotal   *prometheus.CounterVec
	diagnosticsTotal   *prometheus.CounterVec
	validationDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bindgraph_validations_total",
				Help: "Number of validation requests by result.",
			},
			[]string{"result"},
		),
		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bindgraph_diagnostics_total",
				Help: "Number of diagnostics reported by severity.",
			},
			[]string{"severity"},
		),
		validationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bindgraph_validation_duration_seconds",
				Help:    "Time taken to resolve and validate a manifest.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.validationsTotal, m.diagnosticsTotal, m.validationDuration)
	return m
}
