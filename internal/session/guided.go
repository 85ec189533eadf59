package session

import (
	"time"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/haptic"
)

var (
	fourSevenEightPhases = []phase{
		{haptic.Inhale, 4 * time.Second},
		{haptic.HoldIn, 7 * time.Second},
		{haptic.Exhale, 8 * time.Second},
	}
	resonantPhases = []phase{
		{haptic.Inhale, 6 * time.Second},
		{haptic.Exhale, 6 * time.Second},
	}
)

func boxPhases(secs int) []phase {
	d := time.Duration(secs) * time.Second
	return []phase{
		{haptic.Inhale, d},
		{haptic.HoldIn, d},
		{haptic.Exhale, d},
		{haptic.HoldOut, d},
	}
}

// customPhases keeps the non-zero configured phases in breathing order.
func customPhases(cp config.CustomPhases) []phase {
	var phases []phase
	for _, p := range []struct {
		kind haptic.PhaseKind
		secs int
	}{
		{haptic.Inhale, cp.InhaleSeconds},
		{haptic.HoldIn, cp.HoldInSeconds},
		{haptic.Exhale, cp.ExhaleSeconds},
		{haptic.HoldOut, cp.HoldOutSeconds},
	} {
		if p.secs > 0 {
			phases = append(phases, phase{p.kind, time.Duration(p.secs) * time.Second})
		}
	}
	return phases
}

// enterGuided starts cycling c.phases. cue is false when the caller has
// already marked the first inhale.
func (c *Controller) enterGuided(now time.Time, cue bool) {
	c.data = &guidedData{runStart: now, phaseStart: now}
	if cue && len(c.phases) > 0 {
		c.issue(haptic.PhaseCue{Kind: c.phases[0].kind}, now)
	}
}

func (c *Controller) updateGuided(p button.PressEvent, now time.Time) {
	if isAbort(p) {
		c.abortGuided(now)
		return
	}
	if c.state == DynamicGuided && p == button.Short {
		c.reteach(now)
	}

	d := c.data.(*guidedData)
	if len(c.phases) == 0 {
		return
	}
	cur := c.phases[d.idx]
	if now.Sub(d.phaseStart) < cur.d {
		return
	}

	// Phase boundary.
	d.phaseStart = d.phaseStart.Add(cur.d)
	if limit := c.cfg.GuidedDuration(); limit > 0 && now.Sub(d.runStart) >= limit {
		c.builder.guidedSeconds += seconds(now.Sub(d.runStart))
		c.log.Info().Dur("ran", now.Sub(d.runStart)).Msg("guided duration reached")
		c.complete(now)
		return
	}
	d.idx = (d.idx + 1) % len(c.phases)
	c.issue(haptic.PhaseCue{Kind: c.phases[d.idx].kind}, now)
}

// abortGuided drops the log: guided patterns keep nothing on abort.
func (c *Controller) abortGuided(now time.Time) {
	c.issue(haptic.Pulse{Duration: abortPulse}, now)
	c.discardLog("aborted")
	c.enter(Idle, now)
}
