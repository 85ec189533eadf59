package session

import (
	"time"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/haptic"
)

func (c *Controller) enterDeepBreathing(now time.Time) {
	c.sessionRound++
	c.builder.beginRound()
	c.data = &roundData{}
	c.issue(pulseTrain(c.sessionRound), now)
}

func (c *Controller) updateDeepBreathing(p button.PressEvent, now time.Time) {
	if isAbort(p) {
		c.abort(now)
		return
	}

	elapsed := now.Sub(c.enteredAt)
	switch {
	case p == button.Short:
		c.builder.current().DeepSeconds = seconds(elapsed)
		c.enter(BreathHold, now)
	case elapsed >= c.cfg.DeepBreathing():
		c.builder.current().DeepSeconds = seconds(elapsed)
		c.enter(BreathHold, now)
		c.issue(haptic.Pulse{Duration: timeoutPulse}, now)
	}
}

func (c *Controller) updateBreathHold(p button.PressEvent, now time.Time) {
	if isAbort(p) {
		c.abort(now)
		return
	}
	if p == button.Short {
		c.builder.current().HoldSeconds = seconds(now.Sub(c.enteredAt))
		c.enter(Recovery, now)
	}
}

func (c *Controller) updateRecovery(p button.PressEvent, now time.Time) {
	if isAbort(p) {
		c.abort(now)
		return
	}

	d := c.data.(*roundData)
	if d.exiting {
		// The exit sequence gates the next round.
		if !c.deps.Haptics.Busy() {
			c.finishRound(now)
		}
		return
	}

	elapsed := now.Sub(c.enteredAt)
	if p == button.Short || elapsed >= c.cfg.Recovery() {
		c.builder.current().RecoverSeconds = seconds(elapsed)
		d.exiting = true
		c.issue(recoveryExit, now)
	}
}

func (c *Controller) finishRound(now time.Time) {
	if c.sessionRound < c.cfg.CurrentRound {
		c.enter(DeepBreathing, now)
		return
	}
	c.complete(now)
}

func (c *Controller) enterSilent(now time.Time) {
	c.data = &silentData{lastReminder: now}
	c.issue(swell, now)
}

func (c *Controller) updateSilent(p button.PressEvent, now time.Time) {
	if isAbort(p) {
		c.abort(now)
		return
	}

	d := c.data.(*silentData)
	if d.exiting {
		if !c.deps.Haptics.Busy() {
			c.builder.silentSeconds = seconds(d.exitAt.Sub(c.enteredAt))
			c.saveLog(false)
			c.suppressPreview = true
			c.enter(Idle, now)
		}
		return
	}

	if p == button.Short || now.Sub(c.enteredAt) >= c.cfg.SilentMax() {
		d.exiting = true
		d.exitAt = now
		c.issue(swell, now)
		return
	}

	if c.cfg.SilentReminderEnabled &&
		now.Sub(d.lastReminder) >= c.cfg.SilentReminderInterval() &&
		!c.deps.Haptics.Busy() {
		d.lastReminder = now
		c.issue(haptic.Pulse{Duration: reminderPulse}, now)
	}
}

// abort ends a Wim Hof or silent session. The partial log is kept only if
// the session ran for at least the abort-save threshold.
func (c *Controller) abort(now time.Time) {
	c.recordPartial(now)
	c.issue(haptic.Pulse{Duration: abortPulse}, now)

	if ran := c.builder.elapsed(now); ran >= c.cfg.AbortSaveThreshold() {
		c.log.Info().Dur("ran", ran).Msg("session aborted, saving partial log")
		c.saveLog(true)
	} else {
		c.discardLog("aborted early")
	}
	c.enter(Idle, now)
}

// recordPartial stores the time spent in the interrupted phase.
func (c *Controller) recordPartial(now time.Time) {
	elapsed := seconds(now.Sub(c.enteredAt))
	switch c.state {
	case DeepBreathing:
		c.builder.current().DeepSeconds = elapsed
	case BreathHold:
		c.builder.current().HoldSeconds = elapsed
	case Recovery:
		if d, ok := c.data.(*roundData); ok && !d.exiting {
			c.builder.current().RecoverSeconds = elapsed
		}
	case Silent:
		if d, ok := c.data.(*silentData); ok && d.exiting {
			elapsed = seconds(d.exitAt.Sub(c.enteredAt))
		}
		c.builder.silentSeconds = elapsed
	}
}
