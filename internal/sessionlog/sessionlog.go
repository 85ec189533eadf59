// Package sessionlog defines the record written for each finished or
// aborted breathing session, and the stores that keep them.
package sessionlog

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a log id does not exist.
var ErrNotFound = errors.New("session log not found")

// Round is one completed Wim Hof round.
type Round struct {
	DeepSeconds    int `json:"deep"`
	HoldSeconds    int `json:"hold"`
	RecoverSeconds int `json:"recover"`
}

// Settings is the configuration in force when the session ran.
type Settings struct {
	Rounds               int    `json:"rounds,omitempty"`
	DeepBreathingSeconds int    `json:"deep_breathing_seconds,omitempty"`
	RecoverySeconds      int    `json:"recovery_seconds,omitempty"`
	BoxSeconds           int    `json:"box_seconds,omitempty"`
	GuidedMinutes        int    `json:"guided_minutes,omitempty"`
	CustomPhases         [4]int `json:"custom_phases,omitempty"`
	DynamicInhale        int    `json:"dynamic_inhale,omitempty"`
	DynamicExhale        int    `json:"dynamic_exhale,omitempty"`
	SilentAfter          bool   `json:"silent_after"`
}

// Log is one session record.
type Log struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"`       // 2006-01-02
	StartTime     string   `json:"start_time"` // 15:04:05
	PatternID     int      `json:"pattern_id"`
	PatternName   string   `json:"pattern"`
	TotalSeconds  int      `json:"total"`
	SilentSeconds int      `json:"silent"`
	Aborted       bool     `json:"aborted,omitempty"`
	Rounds        []Round  `json:"rounds"`
	Settings      Settings `json:"settings"`
}

// Store receives finished session logs. Stores are append-only from the
// session core's point of view.
type Store interface {
	Append(ctx context.Context, l Log) error
}

// Tee appends to every store and joins their errors. A failing store does
// not stop the others.
type Tee []Store

// Append implements Store.
func (t Tee) Append(ctx context.Context, l Log) error {
	var errs []error
	for i, s := range t {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, l); err != nil {
			errs = append(errs, fmt.Errorf("store %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
