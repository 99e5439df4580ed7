package server

import (
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// metrics exports conversion and HTTP metrics to Prometheus.
type metrics struct {
	conversions        *promclient.CounterVec
	conversionDuration promclient.Histogram
	requestDuration    *promclient.HistogramVec
}

func newMetrics(reg promclient.Registerer) *metrics {
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}
	m := &metrics{
		conversions: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: "mailforge",
			Name:      "conversions_total",
			Help:      "Conversion outcomes by status.",
		}, []string{"status"}),
		conversionDuration: promclient.NewHistogram(promclient.HistogramOpts{
			Namespace: "mailforge",
			Name:      "conversion_duration_seconds",
			Help:      "End-to-end conversion latency.",
			Buckets:   promclient.DefBuckets,
		}),
		requestDuration: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: "mailforge",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path and status.",
			Buckets:   promclient.DefBuckets,
		}, []string{"path", "status"}),
	}
	m.conversions = registerCounterVec(reg, m.conversions)
	m.conversionDuration = registerHistogram(reg, m.conversionDuration)
	m.requestDuration = registerHistogramVec(reg, m.requestDuration)
	return m
}

func (m *metrics) observeConversion(elapsed time.Duration, status string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(status).Inc()
	m.conversionDuration.Observe(elapsed.Seconds())
}

func (m *metrics) observeRequest(path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(path, status).Observe(elapsed.Seconds())
}

// The register helpers tolerate re-registration so tests can construct
// more than one Server against the default registerer.

func registerCounterVec(reg promclient.Registerer, c *promclient.CounterVec) *promclient.CounterVec {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(promclient.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*promclient.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func registerHistogram(reg promclient.Registerer, h promclient.Histogram) promclient.Histogram {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(promclient.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(promclient.Histogram); ok {
				return existing
			}
		}
	}
	return h
}

func registerHistogramVec(reg promclient.Registerer, h *promclient.HistogramVec) *promclient.HistogramVec {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(promclient.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*promclient.HistogramVec); ok {
				return existing
			}
		}
	}
	return h
}
