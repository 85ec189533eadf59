package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/haptic"
	"github.com/sweeney/breath-pacer/internal/logging"
	"github.com/sweeney/breath-pacer/internal/metrics"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
)

var (
	// ErrSessionActive is returned by ReloadConfig while a session runs.
	ErrSessionActive = errors.New("session active")
	// ErrCommitPending is returned by ReloadConfig while an Idle value
	// change is waiting to be saved.
	ErrCommitPending = errors.New("value commit pending")
)

// Haptics is the part of the haptic engine the controller drives.
type Haptics interface {
	Issue(effect haptic.Effect, now time.Time)
	Busy() bool
	Stop()
}

// Sleeper puts the device into deep sleep with the button as wake source.
type Sleeper interface {
	// Sleep returns once the device has woken, with the wake time.
	Sleep() (time.Time, error)
}

// Deps are the controller's collaborators. Haptics, ConfigStore and
// LogStore are required.
type Deps struct {
	Haptics     Haptics
	ConfigStore config.Store
	LogStore    sessionlog.Store

	// Sleeper is called on idle timeout. Nil keeps the device awake.
	Sleeper Sleeper
	// PreventSleep vetoes sleep while it returns true. Nil never vetoes.
	PreventSleep func() bool
	// BootNumber supplies the number read out after boot when AnnounceIP
	// is set (the last IPv4 octet).
	BootNumber func() (int, bool)
	// Clock re-reads the time after blocking announcements. Defaults to time.Now.
	Clock func() time.Time
}

// Input is one tick's worth of classified button output.
type Input struct {
	Press button.PressEvent
	Cue   button.HoldZoneCue
	Time  time.Time
}

// Controller is the session state machine. Not safe for concurrent use;
// it is driven from the tick loop only.
type Controller struct {
	deps Deps
	cfg  config.Config
	log  zerolog.Logger

	state     State
	enteredAt time.Time
	data      stateData

	// Session scoped, reset when a session starts.
	sessionRound int
	phases       []phase
	teach        learner
	builder      logBuilder

	suppressPreview bool
}

// NewController loads the config and starts in Booting.
func NewController(deps Deps, now time.Time) (*Controller, error) {
	if deps.Haptics == nil || deps.ConfigStore == nil || deps.LogStore == nil {
		return nil, errors.New("session: haptics, config store and log store are required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	cfg, err := deps.ConfigStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	c := &Controller{
		deps: deps,
		cfg:  config.Normalize(cfg),
		log:  logging.WithComponent("session"),
	}
	c.enter(Booting, now)
	return c, nil
}

// Update consumes one tick of input.
func (c *Controller) Update(in Input) {
	now := in.Time
	if in.Cue != button.NoCue {
		c.handleCue(in.Cue, now)
	}

	switch c.state {
	case Booting:
		// FinishBooting is called by the driver.
	case Idle:
		c.updateIdle(in.Press, now)
	case DeepBreathing:
		c.updateDeepBreathing(in.Press, now)
	case BreathHold:
		c.updateBreathHold(in.Press, now)
	case Recovery:
		c.updateRecovery(in.Press, now)
	case Silent:
		c.updateSilent(in.Press, now)
	case BoxRunning, FourSevenEightRunning, ResonantRunning, CustomRunning, DynamicGuided:
		c.updateGuided(in.Press, now)
	case DynamicTeaching:
		c.updateTeaching(in.Press, now)
	}
}

// FinishBooting moves from Booting to Idle. It is a no-op in other states.
// When AnnounceIP is set the boot number is read out first (blocking).
func (c *Controller) FinishBooting(now time.Time) {
	if c.state != Booting {
		return
	}
	if c.cfg.AnnounceIP && c.deps.BootNumber != nil {
		if n, ok := c.deps.BootNumber(); ok {
			c.log.Info().Int("value", n).Msg("announcing address")
			c.issue(haptic.NumberAnnounce{Value: n}, now)
			now = c.deps.Clock()
		}
	}
	c.enter(Idle, now)
}

// ReloadConfig re-reads the config store. It only succeeds outside a
// session, with no Idle value change waiting to be saved.
func (c *Controller) ReloadConfig() error {
	if c.state.Active() {
		return ErrSessionActive
	}
	if d, ok := c.data.(*idleData); ok && d.commitPending {
		return ErrCommitPending
	}
	cfg, err := c.deps.ConfigStore.Load()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	c.cfg = config.Normalize(cfg)
	c.log.Info().Str("pattern", c.cfg.CurrentPattern.Name()).Msg("config reloaded")
	return nil
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// StateEnteredAt returns when the current state was entered.
func (c *Controller) StateEnteredAt() time.Time { return c.enteredAt }

// SessionRound returns the Wim Hof round in progress, 0 outside a session.
func (c *Controller) SessionRound() int { return c.sessionRound }

// TotalRounds returns the number of rounds a Wim Hof session runs.
func (c *Controller) TotalRounds() int { return c.cfg.CurrentRound }

// Config returns a copy of the in-memory config.
func (c *Controller) Config() config.Config { return c.cfg }

// enter is the only place the state changes. It stamps the entry time,
// drops the previous state's payload and runs entry logic.
func (c *Controller) enter(s State, now time.Time) {
	from := c.state
	c.state = s
	c.enteredAt = now
	c.data = nil

	metrics.RecordTransition(from.String(), s.String())
	c.log.Info().
		Str("from", from.String()).
		Str("state", s.String()).
		Int("round", c.sessionRound).
		Msg("state transition")

	switch s {
	case Booting:
		c.data = &bootData{}
	case Idle:
		c.enterIdle(now)
	case DeepBreathing:
		c.enterDeepBreathing(now)
	case BreathHold:
		c.data = &roundData{}
		c.issue(haptic.Pulse{Duration: stateEntryPulse}, now)
	case Recovery:
		c.data = &roundData{}
		c.issue(haptic.Pulse{Duration: stateEntryPulse}, now)
	case Silent:
		c.enterSilent(now)
	case BoxRunning, FourSevenEightRunning, ResonantRunning, CustomRunning:
		c.enterGuided(now, true)
	case DynamicGuided:
		c.enterGuided(now, false)
	case DynamicTeaching:
		c.enterTeaching(now)
	}
}

func (c *Controller) handleCue(cue button.HoldZoneCue, now time.Time) {
	if c.state == Booting || c.exitPending() {
		return
	}
	if d, ok := c.data.(*idleData); ok {
		d.lastInteraction = now
	}
	c.issue(haptic.Pulse{Duration: cuePulse}, now)
}

// exitPending reports whether an exit sequence is playing that must not
// be cut short.
func (c *Controller) exitPending() bool {
	switch d := c.data.(type) {
	case *roundData:
		return d.exiting
	case *silentData:
		return d.exiting
	}
	return false
}

func (c *Controller) issue(e haptic.Effect, now time.Time) {
	metrics.RecordEffect(haptic.Name(e))
	c.deps.Haptics.Issue(e, now)
}

func (c *Controller) saveConfig() {
	if err := c.deps.ConfigStore.Save(c.cfg); err != nil {
		metrics.RecordStoreError("config")
		c.log.Error().Err(err).Msg("failed to save config")
	}
}

// saveLog finalizes the session log and hands it to the log store. The
// builder is reset whether or not the store accepts it.
func (c *Controller) saveLog(aborted bool) {
	if !c.builder.active {
		return
	}
	l := c.builder.finish(aborted)
	c.builder.reset()

	outcome := "completed"
	if aborted {
		outcome = "aborted"
	}
	metrics.RecordSession(l.PatternName, outcome)

	ctx, cancel := context.WithTimeout(context.Background(), logAppendTimeout)
	defer cancel()
	if err := c.deps.LogStore.Append(ctx, l); err != nil {
		metrics.RecordStoreError("session_log")
		c.log.Error().Err(err).Str("id", l.ID).Msg("failed to store session log")
		return
	}
	c.log.Info().
		Str("id", l.ID).
		Str("pattern", l.PatternName).
		Int("total", l.TotalSeconds).
		Int("rounds", len(l.Rounds)).
		Bool("aborted", aborted).
		Msg("session log saved")
}

func (c *Controller) discardLog(reason string) {
	if !c.builder.active {
		return
	}
	metrics.RecordSession(c.builder.pattern.Name(), "discarded")
	c.log.Info().Str("pattern", c.builder.pattern.Name()).Str("reason", reason).Msg("session log discarded")
	c.builder.reset()
}

// complete ends a session normally: into Silent when the pattern asks for
// it, else straight to Idle with the log saved.
func (c *Controller) complete(now time.Time) {
	if c.cfg.SilentAfterPattern(c.builder.pattern) {
		c.enter(Silent, now)
		return
	}
	c.saveLog(false)
	c.enter(Idle, now)
}

func isAbort(p button.PressEvent) bool {
	return p == button.Long || p == button.VeryLong
}
