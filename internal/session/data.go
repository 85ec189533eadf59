package session

import (
	"time"

	"github.com/sweeney/breath-pacer/internal/haptic"
)

// stateData is the payload owned by the active state. enter replaces it,
// so nothing carries over between states.
type stateData interface {
	stateData()
}

type bootData struct{}

type idleData struct {
	lastInteraction time.Time
	preview         bool // value preview waiting for the engine to go quiet
	commitPending   bool
	lastAdjust      time.Time
}

// roundData belongs to DeepBreathing, BreathHold and Recovery.
type roundData struct {
	exiting bool // Recovery exit sequence playing
}

type silentData struct {
	exiting      bool
	exitAt       time.Time
	lastReminder time.Time
}

type guidedData struct {
	runStart   time.Time
	phaseStart time.Time
	idx        int
}

type teachData struct {
	lastActivity time.Time
}

func (*bootData) stateData()   {}
func (*idleData) stateData()   {}
func (*roundData) stateData()  {}
func (*silentData) stateData() {}
func (*guidedData) stateData() {}
func (*teachData) stateData()  {}

// phase is one step of a guided pattern.
type phase struct {
	kind haptic.PhaseKind
	d    time.Duration
}

// Effect timings.
const (
	stateEntryPulse = 250 * time.Millisecond
	roundPulse      = 250 * time.Millisecond
	roundPulseGap   = 500 * time.Millisecond
	timeoutPulse    = 750 * time.Millisecond
	abortPulse      = 1500 * time.Millisecond
	cuePulse        = 100 * time.Millisecond
	reminderPulse   = 750 * time.Millisecond
	silentSwell     = 2500 * time.Millisecond
	recoveryHold    = 300 * time.Millisecond
	recoveryFade    = 3 * time.Second
	recoveryGap     = 2 * time.Second
	errorPulse      = 80 * time.Millisecond
	confirmPulse    = 150 * time.Millisecond

	logAppendTimeout = 5 * time.Second
)

// pulseTrain plays n round pulses; it previews values and numbers rounds.
func pulseTrain(n int) haptic.Effect {
	seq := make(haptic.Sequence, 0, 2*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			seq = append(seq, haptic.Gap{Duration: roundPulseGap})
		}
		seq = append(seq, haptic.Pulse{Duration: roundPulse})
	}
	return seq
}

var (
	recoveryExit = haptic.Sequence{
		haptic.Pulse{Duration: recoveryHold},
		haptic.FadeOut{Duration: recoveryFade},
		haptic.Gap{Duration: recoveryGap},
	}
	errorBuzz = haptic.Sequence{
		haptic.Pulse{Duration: errorPulse},
		haptic.Gap{Duration: errorPulse},
		haptic.Pulse{Duration: errorPulse},
	}
	confirmBuzz = haptic.Sequence{
		haptic.Pulse{Duration: confirmPulse},
		haptic.Gap{Duration: confirmPulse},
		haptic.Pulse{Duration: confirmPulse},
	}
	swell = haptic.Swell{Rise: silentSwell, Fall: silentSwell}
)
