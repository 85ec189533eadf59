package config

import "fmt"

// PatternID identifies a breathing pattern. Valid ids are 1..NumPatterns.
type PatternID int

const (
	WimHof PatternID = iota + 1
	Box
	FourSevenEight
	Resonant
	Custom
	Dynamic
)

// NumPatterns is the number of selectable patterns.
const NumPatterns = 6

// AllPatterns lists the pattern ids in their default rotation order.
func AllPatterns() []PatternID {
	return []PatternID{WimHof, Box, FourSevenEight, Resonant, Custom, Dynamic}
}

// Valid reports whether p is a known pattern id.
func (p PatternID) Valid() bool {
	return p >= WimHof && p <= Dynamic
}

// Name returns the human readable pattern name used in session logs.
func (p PatternID) Name() string {
	switch p {
	case WimHof:
		return "Wim Hof"
	case Box:
		return "Box"
	case FourSevenEight:
		return "4-7-8"
	case Resonant:
		return "Resonant"
	case Custom:
		return "Custom"
	case Dynamic:
		return "Dynamic"
	default:
		return fmt.Sprintf("Pattern %d", int(p))
	}
}

// index maps a valid id to its slot in the per-pattern arrays.
func (p PatternID) index() int {
	return int(p) - 1
}
