package haptic

import "time"

// FakeOutput records every level written, for test assertions.
type FakeOutput struct {
	// Levels contains all levels written, in order.
	Levels []Level

	// SetError, if set, will be returned by Set (the level is still recorded).
	SetError error
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(level Level) error {
	f.Levels = append(f.Levels, level)
	return f.SetError
}

// Last returns the most recent level, or LevelOff if none was written.
func (f *FakeOutput) Last() Level {
	if len(f.Levels) == 0 {
		return LevelOff
	}
	return f.Levels[len(f.Levels)-1]
}

// Reset clears recorded levels.
func (f *FakeOutput) Reset() {
	f.Levels = nil
	f.SetError = nil
}

// FakeSleeper stands in for time.Sleep in blocking announcements. It
// records the requested durations and returns immediately.
type FakeSleeper struct {
	Slept []time.Duration
}

// Sleep records d.
func (s *FakeSleeper) Sleep(d time.Duration) {
	s.Slept = append(s.Slept, d)
}

// Total returns the sum of recorded sleeps.
func (s *FakeSleeper) Total() time.Duration {
	var total time.Duration
	for _, d := range s.Slept {
		total += d
	}
	return total
}
