package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "techstore",
		Name:      "checkout_attempts_total",
		Help:      "Checkout attempts by outcome (success or failure class).",
	}, []string{"outcome"})

	CheckoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "techstore",
		Name:      "checkout_duration_seconds",
		Help:      "End-to-end checkout orchestration latency.",
		Buckets:   prometheus.DefBuckets,
	})
)
