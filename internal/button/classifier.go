package button

import "time"

// Classifier debounces a single button and classifies presses by hold time.
type Classifier struct {
	th Thresholds

	// Current stable (debounced) reading
	stable bool
	// Raw reading awaiting debounce, and when it was first seen
	pending      bool
	pendingSince time.Time
	hasPending   bool

	pressedAt time.Time
	longArmed bool
	veryArmed bool
	counts    Counts
}

// NewClassifier creates a classifier. The button starts released.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// SetThresholds replaces the tunables. An in-progress press keeps its
// press timestamp and is classified with the new values.
func (c *Classifier) SetThresholds(th Thresholds) {
	c.th = th
}

// Thresholds returns the active tunables.
func (c *Classifier) Thresholds() Thresholds {
	return c.th
}

// Update takes one raw sample (true = pressed) and returns at most one
// press event and at most one zone cue.
func (c *Classifier) Update(pressed bool, now time.Time) Output {
	var out Output

	if c.acceptSample(pressed, now) {
		if c.stable {
			c.pressedAt = now
			c.longArmed = true
			c.veryArmed = true
		} else {
			out.Press = c.classify(now.Sub(c.pressedAt))
			c.count(out.Press)
		}
		return out
	}

	if c.stable {
		out.Cue = c.zoneCue(now.Sub(c.pressedAt))
	}
	return out
}

// acceptSample runs the debounce window. Returns true when the stable
// state changed on this sample.
func (c *Classifier) acceptSample(pressed bool, now time.Time) bool {
	if pressed == c.stable {
		// Back to stable, clear any pending change
		c.hasPending = false
		return false
	}

	if !c.hasPending || c.pending != pressed {
		c.pending = pressed
		c.pendingSince = now
		c.hasPending = true
		return false
	}

	if now.Sub(c.pendingSince) < c.th.Debounce {
		return false
	}

	c.stable = pressed
	c.hasPending = false
	return true
}

func (c *Classifier) classify(held time.Duration) PressEvent {
	switch {
	case held >= c.th.VeryLongPress:
		return VeryLong
	case held >= c.th.LongPress:
		return Long
	case held >= c.th.Debounce:
		return Short
	default:
		return NoPress
	}
}

func (c *Classifier) zoneCue(held time.Duration) HoldZoneCue {
	if c.longArmed && held >= c.th.LongPress {
		c.longArmed = false
		return EnteredLong
	}
	if c.veryArmed && held >= c.th.VeryLongPress {
		c.veryArmed = false
		return EnteredVeryLong
	}
	return NoCue
}

func (c *Classifier) count(p PressEvent) {
	switch p {
	case Short:
		c.counts.Short++
	case Long:
		c.counts.Long++
	case VeryLong:
		c.counts.VeryLong++
	}
}

// Pressed reports the debounced button state.
func (c *Classifier) Pressed() bool {
	return c.stable
}

// CountsSnapshot returns the press counts since startup.
func (c *Classifier) CountsSnapshot() Counts {
	return c.counts
}
