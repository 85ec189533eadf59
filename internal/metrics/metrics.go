// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ButtonPressesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breath_pacer_button_presses_total",
		Help: "Classified button presses by kind",
	}, []string{"kind"})

	HoldCuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breath_pacer_hold_cues_total",
		Help: "Hold zone cues emitted while the button is held",
	}, []string{"zone"})

	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breath_pacer_state_transitions_total",
		Help: "Session state machine transitions by target state",
	}, []string{"state"})

	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breath_pacer_sessions_total",
		Help: "Sessions ended, by pattern and outcome (completed, aborted, discarded)",
	}, []string{"pattern", "outcome"})

	HapticEffectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breath_pacer_haptic_effects_total",
		Help: "Haptic effects issued by effect name",
	}, []string{"effect"})

	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breath_pacer_store_errors_total",
		Help: "Failed persistence operations by target",
	}, []string{"target"})

	CurrentState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "breath_pacer_state",
		Help: "1 for the state the session machine is currently in",
	}, []string{"state"})
)

// RecordPress counts a classified press.
func RecordPress(kind string) {
	ButtonPressesTotal.WithLabelValues(kind).Inc()
}

// RecordCue counts a hold zone cue.
func RecordCue(zone string) {
	HoldCuesTotal.WithLabelValues(zone).Inc()
}

// RecordTransition counts a transition and moves the current-state gauge.
func RecordTransition(from, to string) {
	StateTransitionsTotal.WithLabelValues(to).Inc()
	if from != "" {
		CurrentState.WithLabelValues(from).Set(0)
	}
	CurrentState.WithLabelValues(to).Set(1)
}

// RecordSession counts an ended session.
func RecordSession(pattern, outcome string) {
	if pattern == "" {
		pattern = "unknown"
	}
	SessionsTotal.WithLabelValues(pattern, outcome).Inc()
}

// RecordEffect counts an issued haptic effect.
func RecordEffect(name string) {
	HapticEffectsTotal.WithLabelValues(name).Inc()
}

// RecordStoreError counts a failed write to target (config, sqlite, mqtt).
func RecordStoreError(target string) {
	StoreErrorsTotal.WithLabelValues(target).Inc()
}
