package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emi",
			Subsystem: "calculator",
			Name:      "calculations_total",
			Help:      "EMI calculations by outcome",
		},
		[]string{"outcome"}, // ok, invalid, overflow
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emi",
			Subsystem: "calculator",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	principalRequested = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "emi",
			Subsystem: "calculator",
			Name:      "principal_amount",
			Help:      "Principal of successful calculations in currency units",
			Buckets:   prometheus.ExponentialBuckets(50_000, 4, 8),
		},
	)

	persistErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "emi",
			Subsystem: "calculator",
			Name:      "persist_errors_total",
			Help:      "Calculations that could not be written to history",
		},
	)
)
