// Package button turns raw push-button samples into classified press events.
// This package has NO external dependencies (no GPIO, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package button

import "time"

// PressEvent is the classification of one completed press.
type PressEvent int

const (
	NoPress PressEvent = iota
	Short
	Long
	VeryLong
)

func (p PressEvent) String() string {
	switch p {
	case Short:
		return "SHORT"
	case Long:
		return "LONG"
	case VeryLong:
		return "VERY_LONG"
	default:
		return "NONE"
	}
}

// HoldZoneCue fires once when a held press crosses a threshold.
type HoldZoneCue int

const (
	NoCue HoldZoneCue = iota
	EnteredLong
	EnteredVeryLong
)

func (c HoldZoneCue) String() string {
	switch c {
	case EnteredLong:
		return "ENTERED_LONG"
	case EnteredVeryLong:
		return "ENTERED_VERY_LONG"
	default:
		return "NONE"
	}
}

// Thresholds are the classifier tunables.
type Thresholds struct {
	Debounce      time.Duration
	LongPress     time.Duration
	VeryLongPress time.Duration
}

// DefaultThresholds returns the stock tunables.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Debounce:      50 * time.Millisecond,
		LongPress:     2 * time.Second,
		VeryLongPress: 4 * time.Second,
	}
}

// Output is the result of one classifier update.
type Output struct {
	Press PressEvent
	Cue   HoldZoneCue
}

// Counts tracks classified presses since startup.
type Counts struct {
	Short    int
	Long     int
	VeryLong int
}
