package session

import (
	"math"
	"time"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/haptic"
)

const (
	minTapInterval = 150 * time.Millisecond
	teachTimeout   = 20 * time.Second
	teachWindow    = 3
	minSample      = 1
	maxSample      = 16
)

// learner learns inhale and exhale lengths from the intervals between
// taps. The first tap starts timing; after that intervals alternate
// between inhale and exhale.
type learner struct {
	lastTap time.Time
	next    haptic.PhaseKind
	inhale  []int
	exhale  []int
}

func (t *learner) reset() {
	*t = learner{next: haptic.Inhale}
}

// tap records a tap and reports whether it produced a sample.
func (t *learner) tap(now time.Time) bool {
	if t.lastTap.IsZero() {
		t.lastTap = now
		return false
	}
	interval := now.Sub(t.lastTap)
	if interval < minTapInterval {
		return false
	}
	t.lastTap = now
	if interval >= teachTimeout {
		// Too long to be a breath; start timing again from an inhale.
		t.next = haptic.Inhale
		return false
	}

	s := clampSample(int(math.Round(interval.Seconds())))
	if t.next == haptic.Inhale {
		t.inhale = push(t.inhale, s)
		t.next = haptic.Exhale
	} else {
		t.exhale = push(t.exhale, s)
		t.next = haptic.Inhale
	}
	return true
}

func (t *learner) ready() bool {
	return len(t.inhale) >= teachWindow && len(t.exhale) >= teachWindow
}

func (t *learner) averages() (inhale, exhale int) {
	return average(t.inhale), average(t.exhale)
}

func push(window []int, s int) []int {
	window = append(window, s)
	if len(window) > teachWindow {
		window = window[len(window)-teachWindow:]
	}
	return window
}

func average(samples []int) int {
	if len(samples) == 0 {
		return 0
	}
	sum := 0
	for _, s := range samples {
		sum += s
	}
	return clampSample(int(math.Round(float64(sum) / float64(len(samples)))))
}

func clampSample(s int) int {
	if s < minSample {
		return minSample
	}
	if s > maxSample {
		return maxSample
	}
	return s
}

func dynamicPhases(inhale, exhale int) []phase {
	return []phase{
		{haptic.Inhale, time.Duration(inhale) * time.Second},
		{haptic.Exhale, time.Duration(exhale) * time.Second},
	}
}

func (c *Controller) enterTeaching(now time.Time) {
	c.data = &teachData{lastActivity: now}
	c.issue(haptic.Pulse{Duration: stateEntryPulse}, now)
}

func (c *Controller) updateTeaching(p button.PressEvent, now time.Time) {
	if isAbort(p) {
		c.abortGuided(now)
		return
	}

	d := c.data.(*teachData)
	if p == button.Short {
		d.lastActivity = now
		if c.teach.tap(now) && c.teach.ready() {
			inhale, exhale := c.teach.averages()
			c.log.Info().Int("inhale", inhale).Int("exhale", exhale).Msg("rhythm learned")
			c.builder.setDynamic(inhale, exhale)
			c.builder.guidedSeconds += seconds(c.builder.elapsed(now))
			c.phases = dynamicPhases(inhale, exhale)
			c.issue(confirmBuzz, now)
			c.enter(DynamicGuided, now)
		}
		return
	}

	if now.Sub(d.lastActivity) >= teachTimeout {
		c.log.Info().Msg("no taps, leaving dynamic teaching")
		c.discardLog("teaching timeout")
		c.enter(Idle, now)
	}
}

// reteach folds a tap taken during guided breathing into the averages.
// The new lengths apply from the phase in progress.
func (c *Controller) reteach(now time.Time) {
	if !c.teach.tap(now) {
		return
	}
	inhale, exhale := c.teach.averages()
	if inhale == 0 || exhale == 0 {
		return
	}
	c.builder.setDynamic(inhale, exhale)
	c.phases[0].d = time.Duration(inhale) * time.Second
	c.phases[1].d = time.Duration(exhale) * time.Second
	c.log.Debug().Int("inhale", inhale).Int("exhale", exhale).Msg("rhythm updated")
}
