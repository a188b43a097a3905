// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package metrics provides Prometheus instrumentation for Gridwatch:
// store query performance, request outcomes, and the consolidation
// engine's row accounting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store metrics

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridwatch_store_query_duration_seconds",
			Help:    "Duration of row store statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridwatch_store_query_errors_total",
			Help: "Total number of row store statement errors",
		},
		[]string{"operation", "table"},
	)

	// Provider metrics

	SecurityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridwatch_security_rejections_total",
			Help: "Requests rejected by the access control gate",
		},
		[]string{"entity", "reason"}, // "selection", "owner", "column", "blocked", "capability"
	)

	// Consolidation metrics

	ConsolidationPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridwatch_consolidation_passes_total",
			Help: "Consolidation passes by trigger kind",
		},
		[]string{"trigger"}, // "session", "sweep"
	)

	ConsolidatedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridwatch_consolidated_rows_total",
			Help: "Watch log rows finalized by the consolidator",
		},
	)

	SplitRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridwatch_split_rows_total",
			Help: "Watch log rows duplicated at a program boundary",
		},
	)

	// DroppedInvariantRows counts rows deleted because watch_start_time
	// exceeded the terminal time at finalization. The model says this
	// cannot happen; the counter says whether it does.
	DroppedInvariantRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridwatch_dropped_invariant_rows_total",
			Help: "Watch log rows deleted for violating start <= end",
		},
	)

	UnsearchableCleanupRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridwatch_unsearchable_cleanup_rows_total",
			Help: "Consolidated rows deleted because their channel became non-searchable",
		},
	)

	// Scheduler metrics

	ScheduledSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridwatch_scheduled_sweeps_total",
			Help: "Global sweep timers armed (after coalescing)",
		},
	)

	NotificationsFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridwatch_notifications_flushed_total",
			Help: "Change notifications published after commit",
		},
	)
)
