// Package metrics exposes Prometheus counters for settlement activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairburn_settlements_total",
			Help: "Total number of settlement requests by outcome",
		},
		[]string{"status"},
	)

	InstructionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairburn_instructions_total",
			Help: "Total number of ledger instructions produced by kind",
		},
		[]string{"kind"},
	)

	FeeUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fairburn_fee_updates_total",
			Help: "Total number of applied fee rate updates",
		},
	)
)

// RecordSettlement counts one settlement outcome.
func RecordSettlement(err error) {
	if err != nil {
		SettlementsTotal.WithLabelValues(StatusError).Inc()
		return
	}
	SettlementsTotal.WithLabelValues(StatusOK).Inc()
}

// RecordInstruction counts one produced instruction of the given kind.
func RecordInstruction(kind string) {
	InstructionsTotal.WithLabelValues(kind).Inc()
}
