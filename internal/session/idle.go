package session

import (
	"time"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/haptic"
)

func (c *Controller) enterIdle(now time.Time) {
	c.sessionRound = 0
	c.phases = nil
	c.data = &idleData{
		lastInteraction: now,
		preview:         !c.suppressPreview,
	}
	c.suppressPreview = false
}

func (c *Controller) updateIdle(p button.PressEvent, now time.Time) {
	d := c.data.(*idleData)

	switch p {
	case button.Short:
		d.lastInteraction = now
		if c.adjustValue() {
			d.commitPending = true
			d.lastAdjust = now
			d.preview = false
		}
	case button.Long:
		c.commit(d)
		c.cfg.CurrentPattern = c.cfg.NextPattern()
		c.saveConfig()
		c.log.Info().Str("pattern", c.cfg.CurrentPattern.Name()).Msg("pattern selected")
		d.preview = false
		d.lastInteraction = c.announceSelection(now)
		return
	case button.VeryLong:
		c.commit(d)
		d.preview = false
		c.startSession(d, now)
		return
	}

	// Only the last of a burst of taps is saved and previewed.
	if d.commitPending && now.Sub(d.lastAdjust) >= c.cfg.RoundSelectDelay() {
		d.commitPending = false
		c.saveConfig()
		d.preview = true
	}
	if d.preview && !c.deps.Haptics.Busy() {
		d.preview = false
		if v := c.cfg.AdjustableValue(); v > 0 {
			c.issue(pulseTrain(v), now)
		}
	}

	if now.Sub(d.lastInteraction) >= c.cfg.IdleTimeout() {
		c.idleTimeout(d, now)
	}
}

// adjustValue steps the current pattern's adjustable value, wrapping.
// It reports whether the pattern has one.
func (c *Controller) adjustValue() bool {
	switch c.cfg.CurrentPattern {
	case config.WimHof:
		c.cfg.CurrentRound++
		if c.cfg.CurrentRound > c.cfg.MaxRounds {
			c.cfg.CurrentRound = config.MinRounds
		}
		c.log.Debug().Int("rounds", c.cfg.CurrentRound).Msg("rounds selected")
		return true
	case config.Box:
		c.cfg.BoxSeconds++
		if c.cfg.BoxSeconds > config.MaxBoxSeconds {
			c.cfg.BoxSeconds = config.MinBoxSeconds
		}
		c.log.Debug().Int("seconds", c.cfg.BoxSeconds).Msg("box seconds selected")
		return true
	}
	return false
}

// commit saves a pending value change without previewing it.
func (c *Controller) commit(d *idleData) {
	if !d.commitPending {
		return
	}
	d.commitPending = false
	c.saveConfig()
}

// announceSelection reads out the pattern and its value. It blocks, so it
// returns the time after the announcement.
func (c *Controller) announceSelection(now time.Time) time.Time {
	c.issue(haptic.TypeAnnounce{Count: int(c.cfg.CurrentPattern)}, now)
	if v := c.cfg.AdjustableValue(); v > 0 {
		c.issue(haptic.ValueAnnounce{Count: v}, now)
	}
	return c.deps.Clock()
}

func (c *Controller) startSession(d *idleData, now time.Time) {
	pattern := c.cfg.CurrentPattern

	var phases []phase
	switch pattern {
	case config.Box:
		phases = boxPhases(c.cfg.BoxSeconds)
	case config.FourSevenEight:
		phases = fourSevenEightPhases
	case config.Resonant:
		phases = resonantPhases
	case config.Custom:
		phases = customPhases(c.cfg.Custom)
		if len(phases) == 0 {
			c.log.Warn().Msg("custom pattern has no phases, not starting")
			c.issue(errorBuzz, now)
			d.lastInteraction = now
			return
		}
	}

	if c.cfg.StartConfirmationHaptics {
		now = c.announceSelection(now)
	}

	c.sessionRound = 0
	c.phases = phases
	c.teach.reset()
	c.builder.start(now, c.cfg)
	c.log.Info().Str("pattern", pattern.Name()).Int("rounds", c.cfg.CurrentRound).Msg("session started")

	switch pattern {
	case config.WimHof:
		c.enter(DeepBreathing, now)
	case config.Box:
		c.enter(BoxRunning, now)
	case config.FourSevenEight:
		c.enter(FourSevenEightRunning, now)
	case config.Resonant:
		c.enter(ResonantRunning, now)
	case config.Custom:
		c.enter(CustomRunning, now)
	case config.Dynamic:
		c.enter(DynamicTeaching, now)
	}
}

// idleTimeout sleeps the device unless something vetoes it, in which case
// the idle timer starts over.
func (c *Controller) idleTimeout(d *idleData, now time.Time) {
	if c.deps.Sleeper == nil {
		d.lastInteraction = now
		return
	}
	if c.deps.PreventSleep != nil && c.deps.PreventSleep() {
		c.log.Debug().Msg("sleep vetoed")
		d.lastInteraction = now
		return
	}

	c.commit(d)
	c.log.Info().Dur("idle", now.Sub(d.lastInteraction)).Msg("entering deep sleep")
	c.deps.Haptics.Stop()

	woke, err := c.deps.Sleeper.Sleep()
	if err != nil {
		c.log.Error().Err(err).Msg("deep sleep failed")
		d.lastInteraction = now
		return
	}
	c.log.Info().Msg("woke from deep sleep")
	c.enter(Booting, woke)
}
