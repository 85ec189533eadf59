package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/haptic"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
)

const tick = 10 * time.Millisecond

// fakeClock is advanced by the test and by blocking announcements.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeSleeper struct {
	clock *fakeClock
	sleep time.Duration
	err   error
	calls int
}

func (s *fakeSleeper) Sleep() (time.Time, error) {
	s.calls++
	if s.err != nil {
		return time.Time{}, s.err
	}
	s.clock.Advance(s.sleep)
	return s.clock.Now(), nil
}

type harness struct {
	t       *testing.T
	clock   *fakeClock
	out     *haptic.FakeOutput
	engine  *haptic.Engine
	configs *config.FakeStore
	logs    *sessionlog.FakeStore
	sleeper *fakeSleeper
	veto    bool
	c       *Controller
}

// newHarness boots a controller on a default config changed by mutate and
// leaves it in Idle.
func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.StartConfirmationHaptics = false
	if mutate != nil {
		mutate(&cfg)
	}

	clock := &fakeClock{t: time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)}
	out := haptic.NewFakeOutput()
	h := &harness{
		t:       t,
		clock:   clock,
		out:     out,
		engine:  haptic.NewEngine(out, haptic.WithSleep(clock.Advance)),
		configs: config.NewFakeStore(cfg),
		logs:    sessionlog.NewFakeStore(),
		sleeper: &fakeSleeper{clock: clock, sleep: time.Hour},
	}

	c, err := NewController(Deps{
		Haptics:      h.engine,
		ConfigStore:  h.configs,
		LogStore:     h.logs,
		Sleeper:      h.sleeper,
		PreventSleep: func() bool { return h.veto },
		Clock:        clock.Now,
	}, clock.Now())
	require.NoError(t, err)
	require.Equal(t, Booting, c.State())

	c.FinishBooting(clock.Now())
	require.Equal(t, Idle, c.State())
	h.c = c
	return h
}

// step advances the clock by one tick and runs the loop order: haptics
// first, then the state machine.
func (h *harness) step(p button.PressEvent, cue button.HoldZoneCue) {
	h.clock.Advance(tick)
	h.engine.Tick(h.clock.Now())
	h.c.Update(Input{Press: p, Cue: cue, Time: h.clock.Now()})
}

func (h *harness) press(p button.PressEvent) {
	h.step(p, button.NoCue)
}

func (h *harness) wait(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += tick {
		h.step(button.NoPress, button.NoCue)
	}
}

// waitFor ticks until the state is s, failing after limit.
func (h *harness) waitFor(s State, limit time.Duration) {
	h.t.Helper()
	for elapsed := time.Duration(0); elapsed < limit; elapsed += tick {
		if h.c.State() == s {
			return
		}
		h.step(button.NoPress, button.NoCue)
	}
	require.Equal(h.t, s, h.c.State(), "state not reached within %v", limit)
}

// strongWrites counts writes at full strength since index from.
func (h *harness) strongWrites(from int) int {
	n := 0
	for _, l := range h.out.Levels[from:] {
		if l == haptic.LevelStrong {
			n++
		}
	}
	return n
}
