// Package session is the breathing session state machine. It consumes
// classified button events and the current time, drives the haptic engine
// and hands finished session logs to the log store.
//
// Like the rest of the core, it has no I/O of its own: time is always
// injected and every collaborator is an interface.
package session

import "fmt"

// State is the active session state.
type State int

const (
	Booting State = iota
	Idle
	DeepBreathing
	BreathHold
	Recovery
	Silent
	CustomRunning
	BoxRunning
	FourSevenEightRunning
	ResonantRunning
	DynamicTeaching
	DynamicGuided
)

func (s State) String() string {
	switch s {
	case Booting:
		return "BOOTING"
	case Idle:
		return "IDLE"
	case DeepBreathing:
		return "DEEP_BREATHING"
	case BreathHold:
		return "BREATH_HOLD"
	case Recovery:
		return "RECOVERY"
	case Silent:
		return "SILENT"
	case CustomRunning:
		return "CUSTOM_RUNNING"
	case BoxRunning:
		return "BOX_RUNNING"
	case FourSevenEightRunning:
		return "FOUR_SEVEN_EIGHT_RUNNING"
	case ResonantRunning:
		return "RESONANT_RUNNING"
	case DynamicTeaching:
		return "DYNAMIC_TEACHING"
	case DynamicGuided:
		return "DYNAMIC_GUIDED"
	default:
		return fmt.Sprintf("STATE(%d)", int(s))
	}
}

// Description is the human readable status line shown on the status page.
func (s State) Description() string {
	switch s {
	case Booting:
		return "Starting - Device is booting"
	case Idle:
		return "Ready - Device is idle"
	case DeepBreathing:
		return "Deep Breathing - Breathe deeply"
	case BreathHold:
		return "Breath Hold - Hold your breath"
	case Recovery:
		return "Recovery - Recovery breath"
	case Silent:
		return "Silent - Meditation phase"
	case CustomRunning:
		return "Custom - Custom pattern running"
	case BoxRunning:
		return "Box Breathing - Pattern running"
	case FourSevenEightRunning:
		return "4-7-8 Breathing - Pattern running"
	case ResonantRunning:
		return "Resonant Breathing - Pattern running"
	case DynamicTeaching:
		return "Dynamic - Learning your rhythm"
	case DynamicGuided:
		return "Dynamic - Guided breathing"
	default:
		return "Unknown"
	}
}

// Active reports whether s belongs to a running session.
func (s State) Active() bool {
	return s != Booting && s != Idle
}

// wimHof reports whether s is one of the round states.
func (s State) wimHof() bool {
	return s == DeepBreathing || s == BreathHold || s == Recovery
}
