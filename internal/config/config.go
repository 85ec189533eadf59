// Package config holds the device tunables, their defaults and range
// rules, and the YAML file store that persists them.
package config

import (
	"time"
)

// CurrentVersion is the schema version written by the file store.
const CurrentVersion = 3

// Config is the full set of user-settable device parameters. It is a plain
// value: copies never share state.
type Config struct {
	Version int

	// Wim Hof
	MaxRounds            int
	CurrentRound         int
	DeepBreathingSeconds int
	RecoverySeconds      int

	// Silent phase
	SilentPhaseMaxMinutes         int
	SilentReminderEnabled         bool
	SilentReminderIntervalMinutes int

	// Pattern selection
	CurrentPattern PatternID
	PatternOrder   [NumPatterns]PatternID
	Include        [NumPatterns]bool
	SilentAfter    [NumPatterns]bool

	// Guided patterns
	BoxSeconds             int
	GuidedBreathingMinutes int
	Custom                 CustomPhases

	// Behaviour
	IdleTimeoutMinutes        int
	StartConfirmationHaptics  bool
	AbortSaveThresholdSeconds int
	RoundSelectDelayMs        int
	AnnounceIP                bool

	Button ButtonConfig
}

// CustomPhases are the Custom pattern's phase lengths. Zero skips a phase.
type CustomPhases struct {
	InhaleSeconds  int `yaml:"inhale_seconds"`
	HoldInSeconds  int `yaml:"hold_in_seconds"`
	ExhaleSeconds  int `yaml:"exhale_seconds"`
	HoldOutSeconds int `yaml:"hold_out_seconds"`
}

// ButtonConfig holds the press classifier tunables.
type ButtonConfig struct {
	DebounceMs      int `yaml:"debounce_ms"`
	LongPressMs     int `yaml:"long_press_ms"`
	VeryLongPressMs int `yaml:"very_long_press_ms"`
}

// Ranges for clamped fields.
const (
	MinRounds, MaxRoundsLimit    = 1, 10
	MinBoxSeconds, MaxBoxSeconds = 2, 8
	MaxCustomSeconds             = 30
	MaxGuidedMinutes             = 60
)

// Default returns the factory configuration.
func Default() Config {
	return Config{
		Version:                       CurrentVersion,
		MaxRounds:                     5,
		CurrentRound:                  1,
		DeepBreathingSeconds:          30,
		RecoverySeconds:               10,
		SilentPhaseMaxMinutes:         30,
		SilentReminderEnabled:         false,
		SilentReminderIntervalMinutes: 10,
		CurrentPattern:                WimHof,
		PatternOrder:                  [NumPatterns]PatternID{WimHof, Box, FourSevenEight, Resonant, Custom, Dynamic},
		Include:                       [NumPatterns]bool{true, true, true, true, true, true},
		SilentAfter:                   [NumPatterns]bool{true, false, false, false, false, false},
		BoxSeconds:                    4,
		GuidedBreathingMinutes:        5,
		Custom: CustomPhases{
			InhaleSeconds: 4,
			ExhaleSeconds: 6,
		},
		IdleTimeoutMinutes:        3,
		StartConfirmationHaptics:  true,
		AbortSaveThresholdSeconds: 60,
		RoundSelectDelayMs:        1000,
		Button: ButtonConfig{
			DebounceMs:      50,
			LongPressMs:     2000,
			VeryLongPressMs: 4000,
		},
	}
}

// Included reports whether p takes part in pattern rotation.
func (c Config) Included(p PatternID) bool {
	return p.Valid() && c.Include[p.index()]
}

// SilentAfterPattern reports whether completing p leads to the silent phase.
func (c Config) SilentAfterPattern(p PatternID) bool {
	return p.Valid() && c.SilentAfter[p.index()]
}

// SetIncluded changes rotation membership of p.
func (c *Config) SetIncluded(p PatternID, on bool) {
	if p.Valid() {
		c.Include[p.index()] = on
	}
}

// SetSilentAfter changes whether p ends in the silent phase.
func (c *Config) SetSilentAfter(p PatternID, on bool) {
	if p.Valid() {
		c.SilentAfter[p.index()] = on
	}
}

// NextPattern returns the next included pattern after CurrentPattern in
// PatternOrder, wrapping. Returns CurrentPattern if nothing else is included.
func (c Config) NextPattern() PatternID {
	n := len(c.PatternOrder)
	pos := -1
	for i, p := range c.PatternOrder {
		if p == c.CurrentPattern {
			pos = i
			break
		}
	}
	for i := 1; i <= n; i++ {
		p := c.PatternOrder[(pos+i+n)%n]
		if c.Included(p) {
			return p
		}
	}
	return c.CurrentPattern
}

// AdjustableValue is the value short presses change in Idle for the
// current pattern: rounds for Wim Hof, seconds for Box, 0 otherwise.
func (c Config) AdjustableValue() int {
	switch c.CurrentPattern {
	case WimHof:
		return c.CurrentRound
	case Box:
		return c.BoxSeconds
	}
	return 0
}

// Durations of the timed fields.

func (c Config) DeepBreathing() time.Duration {
	return time.Duration(c.DeepBreathingSeconds) * time.Second
}
func (c Config) Recovery() time.Duration { return time.Duration(c.RecoverySeconds) * time.Second }
func (c Config) SilentMax() time.Duration {
	return time.Duration(c.SilentPhaseMaxMinutes) * time.Minute
}
func (c Config) IdleTimeout() time.Duration { return time.Duration(c.IdleTimeoutMinutes) * time.Minute }
func (c Config) GuidedDuration() time.Duration {
	return time.Duration(c.GuidedBreathingMinutes) * time.Minute
}
func (c Config) SilentReminderInterval() time.Duration {
	return time.Duration(c.SilentReminderIntervalMinutes) * time.Minute
}
func (c Config) AbortSaveThreshold() time.Duration {
	return time.Duration(c.AbortSaveThresholdSeconds) * time.Second
}
func (c Config) RoundSelectDelay() time.Duration {
	return time.Duration(c.RoundSelectDelayMs) * time.Millisecond
}
