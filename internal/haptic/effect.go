// Package haptic drives the vibration motor. Effects are advanced once per
// tick by Engine without blocking, except the announcement effects which
// run as explicit synchronous sequences.
package haptic

import (
	"fmt"
	"time"
)

// Level is a motor drive strength, 0 (off) to 255 (full duty).
type Level uint8

const (
	LevelOff    Level = 0
	LevelFloor  Level = 70  // weakest level that is still felt
	LevelStrong Level = 200 // fixed pulse strength and ramp peak
)

// Output is the single motor output. Only Engine writes to it.
type Output interface {
	Set(level Level) error
}

// PhaseKind identifies the breathing phase a cue marks.
type PhaseKind int

const (
	Inhale PhaseKind = iota
	HoldIn
	Exhale
	HoldOut
)

func (k PhaseKind) String() string {
	switch k {
	case Inhale:
		return "INHALE"
	case HoldIn:
		return "HOLD_IN"
	case Exhale:
		return "EXHALE"
	case HoldOut:
		return "HOLD_OUT"
	default:
		return fmt.Sprintf("PHASE(%d)", int(k))
	}
}

// Effect is one of the effect types below.
type Effect interface {
	effectName() string
}

// Pulse drives at LevelStrong for Duration.
type Pulse struct{ Duration time.Duration }

// FadeOut ramps from LevelStrong to LevelFloor, holds the floor briefly, then stops.
type FadeOut struct{ Duration time.Duration }

// FadeIn ramps from LevelFloor to LevelStrong, then sustains for Hold (if > 0).
type FadeIn struct{ Duration, Hold time.Duration }

// Swell ramps floor -> strong over Rise and back to the floor over Fall.
type Swell struct{ Rise, Fall time.Duration }

// Gap keeps the motor off but the engine busy.
type Gap struct{ Duration time.Duration }

// Sequence plays non-blocking effects back to back as one effect.
// Blocking announcements inside a Sequence are ignored.
type Sequence []Effect

// PhaseCue marks a phase boundary. All kinds currently render the same.
type PhaseCue struct{ Kind PhaseKind }

// TypeAnnounce blocks while playing Count long, widely spaced pulses.
type TypeAnnounce struct{ Count int }

// ValueAnnounce blocks while playing Count short, closely spaced pulses.
type ValueAnnounce struct{ Count int }

// NumberAnnounce blocks while reading out Value digit by digit, framed by
// long buzzes. A zero digit is ten buzzes.
type NumberAnnounce struct{ Value int }

func (Pulse) effectName() string          { return "pulse" }
func (FadeOut) effectName() string        { return "fade_out" }
func (FadeIn) effectName() string         { return "fade_in" }
func (Swell) effectName() string          { return "swell" }
func (Gap) effectName() string            { return "gap" }
func (Sequence) effectName() string       { return "sequence" }
func (PhaseCue) effectName() string       { return "phase_cue" }
func (TypeAnnounce) effectName() string   { return "type_announce" }
func (ValueAnnounce) effectName() string  { return "value_announce" }
func (NumberAnnounce) effectName() string { return "number_announce" }

// Name returns a stable label for the effect, used in logs and metrics.
func Name(e Effect) string {
	if e == nil {
		return "none"
	}
	return e.effectName()
}

// Blocking reports whether issuing e holds the caller until it finishes.
func Blocking(e Effect) bool {
	switch e.(type) {
	case TypeAnnounce, ValueAnnounce, NumberAnnounce:
		return true
	}
	return false
}

// Timing of the fixed effects.
const (
	minFade          = 50 * time.Millisecond
	floorHold        = 250 * time.Millisecond
	phaseCueDuration = 100 * time.Millisecond

	typePulse = 800 * time.Millisecond
	typeGap   = 1600 * time.Millisecond
	typeTail  = 1200 * time.Millisecond

	valuePulse = 300 * time.Millisecond
	valueGap   = 300 * time.Millisecond
	valueTail  = 500 * time.Millisecond

	numberFrame      = 1000 * time.Millisecond
	numberFrameGap   = 500 * time.Millisecond
	numberDigitGap   = 1600 * time.Millisecond
	numberTrailPause = 3 * time.Second
)

// segment is a linear ramp from one level to another.
type segment struct {
	from, to Level
	d        time.Duration
}

// compile flattens a non-blocking effect into ramp segments.
func compile(e Effect) []segment {
	switch v := e.(type) {
	case Pulse:
		return []segment{{LevelStrong, LevelStrong, v.Duration}}
	case PhaseCue:
		return []segment{{LevelStrong, LevelStrong, phaseCueDuration}}
	case Gap:
		return []segment{{LevelOff, LevelOff, v.Duration}}
	case FadeOut:
		return []segment{
			{LevelStrong, LevelFloor, clampFade(v.Duration)},
			{LevelFloor, LevelFloor, floorHold},
		}
	case FadeIn:
		segs := []segment{{LevelFloor, LevelStrong, clampFade(v.Duration)}}
		if v.Hold > 0 {
			segs = append(segs, segment{LevelStrong, LevelStrong, v.Hold})
		}
		return segs
	case Swell:
		return []segment{
			{LevelFloor, LevelStrong, clampFade(v.Rise)},
			{LevelStrong, LevelFloor, clampFade(v.Fall)},
		}
	case Sequence:
		var segs []segment
		for _, step := range v {
			if Blocking(step) {
				continue
			}
			segs = append(segs, compile(step)...)
		}
		return segs
	}
	return nil
}

func clampFade(d time.Duration) time.Duration {
	if d < minFade {
		return minFade
	}
	return d
}

// step is one fixed-level stretch of a blocking announcement.
type step struct {
	level Level
	d     time.Duration
}

func pulseTrain(count int, on, gap, tail time.Duration) []step {
	var steps []step
	for i := 0; i < count; i++ {
		steps = append(steps, step{LevelStrong, on})
		if i < count-1 {
			steps = append(steps, step{LevelOff, gap})
		}
	}
	if count > 0 && tail > 0 {
		steps = append(steps, step{LevelOff, tail})
	}
	return steps
}

func numberSteps(value int) []step {
	if value < 0 {
		value = -value
	}
	steps := []step{{LevelStrong, numberFrame}, {LevelOff, numberFrameGap}}
	for _, r := range fmt.Sprint(value) {
		buzzes := int(r - '0')
		if buzzes == 0 {
			buzzes = 10
		}
		for i := 0; i < buzzes; i++ {
			steps = append(steps, step{LevelStrong, valuePulse}, step{LevelOff, valueGap})
		}
		steps = append(steps, step{LevelOff, numberDigitGap})
	}
	steps = append(steps, step{LevelStrong, numberFrame}, step{LevelOff, numberTrailPause})
	return steps
}

func announceSteps(e Effect) []step {
	switch v := e.(type) {
	case TypeAnnounce:
		return pulseTrain(v.Count, typePulse, typeGap, typeTail)
	case ValueAnnounce:
		return pulseTrain(v.Count, valuePulse, valueGap, valueTail)
	case NumberAnnounce:
		return numberSteps(v.Value)
	}
	return nil
}
