// Package metrics exposes the prometheus collectors of the verifier.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "txcore"

var (
	prevOutFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "prevout",
		Name:      "fetch_total",
		Help:      "Count of previous transaction lookups.",
	}, []string{"source", "status"})

	prevOutFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "prevout",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of previous transaction lookups.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "status"})

	txVerifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "verify_total",
		Help:      "Count of transaction verifications.",
	}, []string{"status"})

	txVerifyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "verify_duration_seconds",
		Help:      "Duration of transaction verifications.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	txVerifyInputs = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "verify_inputs",
		Help:      "Number of inputs per verified transaction.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	})

	txSignTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "sign_total",
		Help:      "Count of signed inputs.",
	}, []string{"status"})
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObservePrevOutFetch records a lookup against source.
// A miss that falls through to another source is still an error here.
func ObservePrevOutFetch(source string, err error, started time.Time) {
	if source == "" {
		source = "unknown"
	}
	st := status(err)
	prevOutFetchTotal.WithLabelValues(source, st).Inc()
	prevOutFetchDuration.WithLabelValues(source, st).Observe(time.Since(started).Seconds())
}

// ObserveTxVerify records the outcome of verifying a whole transaction.
func ObserveTxVerify(err error, inputs int, started time.Time) {
	st := status(err)
	txVerifyTotal.WithLabelValues(st).Inc()
	txVerifyDuration.WithLabelValues(st).Observe(time.Since(started).Seconds())
	txVerifyInputs.Observe(float64(inputs))
}

func ObserveSign(err error) {
	txSignTotal.WithLabelValues(status(err)).Inc()
}
