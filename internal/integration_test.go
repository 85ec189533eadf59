package internal

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/haptic"
	"github.com/sweeney/breath-pacer/internal/mqtt"
	"github.com/sweeney/breath-pacer/internal/session"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
	"github.com/sweeney/breath-pacer/internal/status"
)

const tick = 10 * time.Millisecond

// rig wires the real classifier, engine, controller and SQLite store to
// fake hardware and a fake MQTT publisher, and steps them like the daemon.
type rig struct {
	t          *testing.T
	now        time.Time
	pressed    bool
	out        *haptic.FakeOutput
	engine     *haptic.Engine
	classifier *button.Classifier
	controller *session.Controller
	db         *sessionlog.SQLiteStore
	pub        *mqtt.FakePublisher
}

func newRig(t *testing.T, mutate func(*config.Config)) *rig {
	t.Helper()
	cfg := config.Default()
	cfg.StartConfirmationHaptics = false
	if mutate != nil {
		mutate(&cfg)
	}

	db, err := sessionlog.OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := &rig{
		t:   t,
		now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		out: haptic.NewFakeOutput(),
		db:  db,
		pub: mqtt.NewFakePublisher(),
	}
	r.engine = haptic.NewEngine(r.out, haptic.WithSleep(func(d time.Duration) { r.now = r.now.Add(d) }))

	r.controller, err = session.NewController(session.Deps{
		Haptics:     r.engine,
		ConfigStore: config.NewFakeStore(cfg),
		LogStore:    sessionlog.Tee{db, mqtt.LogStore{Publisher: r.pub}},
		Clock:       func() time.Time { return r.now },
	}, r.now)
	require.NoError(t, err)
	r.classifier = button.NewClassifier(button.Thresholds{
		Debounce:      time.Duration(cfg.Button.DebounceMs) * time.Millisecond,
		LongPress:     time.Duration(cfg.Button.LongPressMs) * time.Millisecond,
		VeryLongPress: time.Duration(cfg.Button.VeryLongPressMs) * time.Millisecond,
	})
	r.controller.FinishBooting(r.now)
	require.Equal(t, session.Idle, r.controller.State())
	return r
}

func (r *rig) step() {
	r.now = r.now.Add(tick)
	out := r.classifier.Update(r.pressed, r.now)
	r.engine.Tick(r.now)
	r.controller.Update(session.Input{Press: out.Press, Cue: out.Cue, Time: r.now})
}

func (r *rig) wait(d time.Duration) {
	for end := r.now.Add(d); r.now.Before(end); {
		r.step()
	}
}

// hold presses the button for d, then releases it long enough to be
// classified.
func (r *rig) hold(d time.Duration) {
	r.pressed = true
	r.wait(d)
	r.pressed = false
	r.wait(100 * time.Millisecond)
}

func (r *rig) storedLogs() []sessionlog.Log {
	logs, err := r.db.List(context.Background(), 0)
	require.NoError(r.t, err)
	return logs
}

// TestIntegrationWimHofSession runs one Wim Hof round from the button to
// the stored and published log.
func TestIntegrationWimHofSession(t *testing.T) {
	r := newRig(t, func(c *config.Config) {
		c.CurrentRound = 1
		c.DeepBreathingSeconds = 5
		c.RecoverySeconds = 5
		c.SetSilentAfter(config.WimHof, false)
	})

	r.wait(2 * time.Second) // value preview
	r.hold(4500 * time.Millisecond)
	require.Equal(t, session.DeepBreathing, r.controller.State())

	r.wait(6 * time.Second)
	require.Equal(t, session.BreathHold, r.controller.State())

	r.wait(20 * time.Second)
	r.hold(200 * time.Millisecond)
	require.Equal(t, session.Recovery, r.controller.State())

	r.wait(15 * time.Second) // recovery timeout and exit sequence
	require.Equal(t, session.Idle, r.controller.State())

	logs := r.storedLogs()
	require.Len(t, logs, 1)
	l := logs[0]
	assert.Equal(t, "Wim Hof", l.PatternName)
	assert.False(t, l.Aborted)
	require.Len(t, l.Rounds, 1)
	assert.Equal(t, 5, l.Rounds[0].DeepSeconds)
	assert.Equal(t, 5, l.Rounds[0].RecoverSeconds)
	assert.InDelta(t, 20, l.Rounds[0].HoldSeconds, 1)
	assert.Equal(t, l.Rounds[0].DeepSeconds+l.Rounds[0].HoldSeconds+l.Rounds[0].RecoverSeconds, l.TotalSeconds)
	assert.Equal(t, "2026-01-01", l.Date)

	require.Len(t, r.pub.Sessions, 1)
	assert.Equal(t, l.ID, r.pub.Sessions[0].ID)

	var payload mqtt.SessionPayload
	require.NoError(t, json.Unmarshal(r.pub.SessionPayloads[0], &payload))
	assert.Equal(t, l.TotalSeconds, payload.Session.TotalSeconds)
	assert.Equal(t, haptic.LevelOff, r.out.Last())
}

// TestIntegrationPublishFailureStillStores checks that a broker failure
// does not lose the local copy.
func TestIntegrationPublishFailureStillStores(t *testing.T) {
	r := newRig(t, func(c *config.Config) {
		c.CurrentRound = 1
		c.DeepBreathingSeconds = 5
		c.RecoverySeconds = 5
		c.SetSilentAfter(config.WimHof, false)
	})
	r.pub.PublishError = errors.New("broker unavailable")

	r.wait(2 * time.Second)
	r.hold(4500 * time.Millisecond)
	r.wait(6 * time.Second)
	r.hold(200 * time.Millisecond)
	r.wait(15 * time.Second)

	require.Equal(t, session.Idle, r.controller.State())
	assert.Len(t, r.storedLogs(), 1)
	assert.Empty(t, r.pub.Sessions)
}

// TestIntegrationGuidedAbortDiscards selects Box with a long press,
// starts it and aborts with another long press; nothing is stored.
func TestIntegrationGuidedAbortDiscards(t *testing.T) {
	r := newRig(t, nil)

	r.wait(2 * time.Second)
	r.hold(2500 * time.Millisecond)
	require.Equal(t, config.Box, r.controller.Config().CurrentPattern)

	r.wait(time.Second)
	r.hold(4500 * time.Millisecond)
	require.Equal(t, session.BoxRunning, r.controller.State())

	r.wait(10 * time.Second)
	r.hold(200 * time.Millisecond) // short presses are ignored while guided
	require.Equal(t, session.BoxRunning, r.controller.State())

	r.hold(2500 * time.Millisecond)
	r.wait(time.Second)
	assert.Equal(t, session.Idle, r.controller.State())
	assert.Empty(t, r.storedLogs())
	assert.Empty(t, r.pub.Sessions)
}

// TestIntegrationStatusPayloads checks the status JSON carried by system
// events reflects the running session.
func TestIntegrationStatusPayloads(t *testing.T) {
	r := newRig(t, func(c *config.Config) { c.CurrentRound = 2 })
	tracker := status.NewTracker(r.now, status.Config{Broker: "tcp://localhost:1883"})
	tracker.SetNetwork(&status.NetworkInfo{Status: "connected", IP: "10.0.0.7"})

	r.wait(2 * time.Second)
	r.hold(4500 * time.Millisecond)
	require.Equal(t, session.DeepBreathing, r.controller.State())

	state := r.controller.State()
	tracker.Update(status.Session{
		State:       state.String(),
		Description: state.Description(),
		Pattern:     r.controller.Config().CurrentPattern.Name(),
		Round:       r.controller.SessionRound(),
		TotalRounds: r.controller.TotalRounds(),
		Since:       r.controller.StateEnteredAt(),
	}, true, r.classifier.CountsSnapshot(), r.engine.Active())

	event := mqtt.SystemEvent{
		Timestamp:  r.now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", ""),
	}
	data, err := mqtt.FormatSystemPayload(event)
	require.NoError(t, err)

	var parsed status.StatusJSON
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "HEARTBEAT", parsed.Status.Event)
	assert.Equal(t, "DEEP_BREATHING", parsed.Status.Session.State)
	assert.Equal(t, 1, parsed.Status.Session.Round)
	assert.Equal(t, 2, parsed.Status.Session.TotalRounds)
	assert.Equal(t, 1, parsed.Status.Presses.VeryLong)
	require.NotNil(t, parsed.Status.Network)
	assert.Equal(t, "10.0.0.7", parsed.Status.Network.IP)
}
