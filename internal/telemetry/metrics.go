// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package telemetry provides the Prometheus metrics for the twin attendant service.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	SweepsTotal         prometheus.Counter
	WindowMissedTotal   prometheus.Counter
	ClaimConflictsTotal prometheus.Counter
	JoinsSucceeded      prometheus.Counter
	JoinsFailed         prometheus.Counter
	MeetingsReaped      prometheus.Counter
	FinalizedSucceeded  prometheus.Counter
	FinalizedFailed     prometheus.Counter
	SummarizerFailures  prometheus.Counter

	// Histograms
	SweepDuration           prometheus.Observer
	SummaryCompressionRatio prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		SweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_sweeps_total",
			Help: "Number of auto-join scheduler sweeps",
		})
		WindowMissedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_window_missed_total",
			Help: "Number of eligible meetings whose join window had already elapsed at sweep time",
		})
		ClaimConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_claim_conflicts_total",
			Help: "Number of meeting claims lost to a concurrent writer",
		})
		JoinsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_joins_succeeded_total",
			Help: "Number of bot joins that reached in_progress",
		})
		JoinsFailed = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_joins_failed_total",
			Help: "Number of bot joins that failed and were reverted to scheduled",
		})
		MeetingsReaped = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_meetings_reaped_total",
			Help: "Number of stuck meetings forced to completed by the reaper",
		})
		FinalizedSucceeded = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_finalized_succeeded_total",
			Help: "Number of meetings finalized with a transcript",
		})
		FinalizedFailed = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_finalized_failed_total",
			Help: "Number of transcript finalizations that failed",
		})
		SummarizerFailures = promauto.NewCounter(prometheus.CounterOpts{
			Name: "twin_attendant_summarizer_failures_total",
			Help: "Number of summarization attempts that failed",
		})
		SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "twin_attendant_sweep_duration_seconds",
			Help:    "Auto-join sweep duration in seconds",
			Buckets: prometheus.DefBuckets,
		})
		SummaryCompressionRatio = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "twin_attendant_summary_compression_ratio",
			Help:    "Summary words divided by transcript words",
			Buckets: []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 0.75, 1},
		})
	})
}

// ObserveSweep records the duration of one scheduler sweep.
func ObserveSweep(d time.Duration) {
	if SweepsTotal != nil {
		SweepsTotal.Inc()
	}
	if SweepDuration != nil {
		SweepDuration.Observe(d.Seconds())
	}
}

// ObserveCompression records a summary compression ratio, skipping the
// degenerate zero value.
func ObserveCompression(ratio float64) {
	if SummaryCompressionRatio != nil && ratio > 0 {
		SummaryCompressionRatio.Observe(ratio)
	}
}

// Inc increments a counter if metrics are initialized. Callers use this so
// that library code stays runnable in tests without Init.
func Inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}
