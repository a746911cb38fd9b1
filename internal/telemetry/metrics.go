// Package telemetry exposes the daemon's internal Prometheus metrics
// registry. No net/http server is part of the core per spec; this
// package only builds the Registry and instruments so a future HTTP
// layer (or a local promhttp.Handler in an operator's own main) can
// serve it, the way jordigilh-kubernaut's integration tests stand up a
// prometheus.Registry to validate instrumentation independent of the
// transport that serves it.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every gauge/counter the Orchestrator updates during its
// loop ticks and mode transitions.
type Metrics struct {
	Registry *prometheus.Registry

	LoopTicksTotal       *prometheus.CounterVec
	LoopSkippedTotal     *prometheus.CounterVec
	LoopErrorsTotal      *prometheus.CounterVec
	ModeTransitionsTotal *prometheus.CounterVec
	CurrentMode          prometheus.Gauge
	CostTodayUSD         prometheus.Gauge
}

// New builds a fresh Registry and registers every metric on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		LoopTicksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentpilot",
			Name:      "loop_ticks_total",
			Help:      "Number of times each orchestrator loop ran its body.",
		}, []string{"loop"}),
		LoopSkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentpilot",
			Name:      "loop_skipped_total",
			Help:      "Number of times a loop tick was skipped by the degradation mode.",
		}, []string{"loop"}),
		LoopErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentpilot",
			Name:      "loop_errors_total",
			Help:      "Number of loop ticks that returned an error.",
		}, []string{"loop"}),
		ModeTransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentpilot",
			Name:      "mode_transitions_total",
			Help:      "Number of operation mode transitions, labeled by the mode entered.",
		}, []string{"to"}),
		CurrentMode: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "contentpilot",
			Name:      "mode",
			Help:      "Current operation mode as an ordinal: 0=full, 1=reduced, 2=minimal, 3=paused.",
		}),
		CostTodayUSD: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "contentpilot",
			Name:      "cost_today_usd",
			Help:      "Estimated provider spend accumulated since UTC midnight.",
		}),
	}
}

// ModeOrdinal maps a mode name to the ordinal CurrentMode reports.
func ModeOrdinal(mode string) float64 {
	switch mode {
	case "full":
		return 0
	case "reduced":
		return 1
	case "minimal":
		return 2
	case "paused":
		return 3
	default:
		return -1
	}
}
