// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the support desk
// service.
//
// Metrics are exposed via the /metrics endpoint. All metric operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"time"

	"github.com/AleutianAI/AleutianDesk/services/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "aleutian_desk"

// Turn outcome label values.
const (
	TurnOK       = "ok"
	TurnFallback = "fallback"
	TurnError    = "error"
)

// EngineMetrics holds the Prometheus metrics for session turns.
//
// A nil *EngineMetrics is a valid no-op receiver for the helper methods,
// so tests can run handlers without a registry.
type EngineMetrics struct {
	// TurnsTotal counts turns by outcome: ok, fallback, error.
	TurnsTotal *prometheus.CounterVec

	// TurnDurationSeconds measures end-to-end turn latency by outcome.
	// Dominated by the provider call.
	TurnDurationSeconds *prometheus.HistogramVec

	// EscalationsTotal counts replies flagged for human handoff.
	EscalationsTotal prometheus.Counter

	// SessionsCreatedTotal counts created sessions.
	SessionsCreatedTotal prometheus.Counter
}

// NewEngineMetrics creates and registers the metrics on the given
// registerer. Pass prometheus.DefaultRegisterer in main; tests pass a
// fresh registry to avoid duplicate registration panics.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	factory := promauto.With(reg)
	return &EngineMetrics{
		TurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "turns_total",
				Help:      "Total chat turns by outcome (ok, fallback, error)",
			},
			[]string{"outcome"},
		),
		TurnDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "turn_duration_seconds",
				Help:      "End-to-end turn latency in seconds by outcome",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"outcome"},
		),
		EscalationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "escalations_total",
				Help:      "Total replies flagged for human escalation",
			},
		),
		SessionsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "sessions_created_total",
				Help:      "Total sessions created",
			},
		),
	}
}

// TurnOutcome maps an engine result onto the outcome label.
func TurnOutcome(result *engine.TurnResult) string {
	if result.Fallback {
		return TurnFallback
	}
	return TurnOK
}

// ObserveTurn records one completed turn. Safe on a nil receiver.
func (m *EngineMetrics) ObserveTurn(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(outcome).Inc()
	m.TurnDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveEscalation records one escalation-flagged reply. Safe on a nil
// receiver.
func (m *EngineMetrics) ObserveEscalation() {
	if m == nil {
		return
	}
	m.EscalationsTotal.Inc()
}

// ObserveSessionCreated records one created session. Safe on a nil
// receiver.
func (m *EngineMetrics) ObserveSessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreatedTotal.Inc()
}
