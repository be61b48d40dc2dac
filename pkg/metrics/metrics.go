// Package metrics provides Prometheus metrics for match evaluations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Evaluation outcomes used as the status label
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// EvaluationMetrics collects and exposes prediction metrics
type EvaluationMetrics struct {
	registry *prometheus.Registry

	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	ExpectedGoals      *prometheus.HistogramVec

	// Value metrics
	ValueBetsTotal *prometheus.CounterVec
	ValueBetEdge   *prometheus.HistogramVec
	RejectedOdds   *prometheus.CounterVec

	// Data metrics
	FetchesTotal  *prometheus.CounterVec
	RejectedRows  *prometheus.CounterVec
	StoredRecords *prometheus.GaugeVec
}

// New creates a collector set on its own registry
func New() *EvaluationMetrics {
	registry := prometheus.NewRegistry()

	m := &EvaluationMetrics{
		registry: registry,

		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchodds_evaluations_total",
				Help: "Total number of match evaluations",
			},
			[]string{"status"},
		),
		EvaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matchodds_evaluation_duration_seconds",
				Help:    "Time taken to evaluate a match",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"status"},
		),
		ExpectedGoals: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matchodds_expected_goals",
				Help:    "Expected total goals of evaluated matches",
				Buckets: prometheus.LinearBuckets(0.5, 0.5, 10),
			},
			[]string{},
		),

		ValueBetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchodds_value_bets_total",
				Help: "Value bets found per market",
			},
			[]string{"market"},
		),
		ValueBetEdge: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matchodds_value_bet_edge",
				Help:    "Edge of detected value bets",
				Buckets: prometheus.LinearBuckets(0.05, 0.05, 10),
			},
			[]string{"market"},
		),
		RejectedOdds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchodds_rejected_odds_total",
				Help: "Quoted prices the value scanner could not use",
			},
			[]string{},
		),

		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchodds_fetches_total",
				Help: "Stats page fetches by source and status",
			},
			[]string{"source", "status"},
		),
		RejectedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchodds_rejected_rows_total",
				Help: "Input rows dropped during validation",
			},
			[]string{"kind"},
		),
		StoredRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "matchodds_stored_records",
				Help: "Records written by the last import",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.ExpectedGoals,
		m.ValueBetsTotal,
		m.ValueBetEdge,
		m.RejectedOdds,
		m.FetchesTotal,
		m.RejectedRows,
		m.StoredRecords,
	)
	return m
}

// Registry returns the prometheus registry
func (m *EvaluationMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *EvaluationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordEvaluation records a finished evaluation, err decides the status label
func (m *EvaluationMetrics) RecordEvaluation(elapsed time.Duration, expectedGoals float64, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.EvaluationsTotal.WithLabelValues(status).Inc()
	m.EvaluationDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if err == nil {
		m.ExpectedGoals.WithLabelValues().Observe(expectedGoals)
	}
}

// RecordValueBet records one detected value bet
func (m *EvaluationMetrics) RecordValueBet(market string, edge float64) {
	m.ValueBetsTotal.WithLabelValues(market).Inc()
	m.ValueBetEdge.WithLabelValues(market).Observe(edge)
}

// RecordRejectedOdds counts prices the scanner skipped
func (m *EvaluationMetrics) RecordRejectedOdds(count int) {
	m.RejectedOdds.WithLabelValues().Add(float64(count))
}

// RecordFetch records a page fetch
func (m *EvaluationMetrics) RecordFetch(source string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.FetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordRejectedRows counts dropped input rows of one kind (players, standings...)
func (m *EvaluationMetrics) RecordRejectedRows(kind string, count int) {
	if count > 0 {
		m.RejectedRows.WithLabelValues(kind).Add(float64(count))
	}
}

// UpdateStored sets the number of records of one kind written by an import
func (m *EvaluationMetrics) UpdateStored(kind string, count int) {
	m.StoredRecords.WithLabelValues(kind).Set(float64(count))
}
