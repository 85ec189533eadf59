package haptic

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/breath-pacer/internal/logging"
)

// Engine owns the motor output and plays at most one effect at a time.
// Not safe for concurrent use; it is driven from the tick loop only.
type Engine struct {
	out   Output
	sleep func(time.Duration)
	log   zerolog.Logger

	segs     []segment
	idx      int
	segStart time.Time
	busy     bool
	active   string

	level   Level
	written bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSleep replaces time.Sleep for the blocking announcements.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// NewEngine creates an engine driving out. The output is not touched until
// the first effect or Stop.
func NewEngine(out Output, opts ...Option) *Engine {
	e := &Engine{
		out:   out,
		sleep: time.Sleep,
		log:   logging.WithComponent("haptic"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Issue installs an effect, preempting whatever is playing. Blocking
// announcements return only after the whole sequence has played; button
// input is not read while they run.
func (e *Engine) Issue(effect Effect, now time.Time) {
	if effect == nil {
		return
	}
	if Blocking(effect) {
		e.block(effect)
		return
	}

	e.segs = compile(effect)
	if len(e.segs) == 0 {
		e.silence()
		return
	}
	e.idx = 0
	e.segStart = now
	e.busy = true
	e.active = Name(effect)
	e.written = false // always overwrite the previous effect's level

	e.Tick(now)
}

// Tick advances the active effect to now.
func (e *Engine) Tick(now time.Time) {
	if !e.busy {
		return
	}

	for e.idx < len(e.segs) && now.Sub(e.segStart) >= e.segs[e.idx].d {
		e.segStart = e.segStart.Add(e.segs[e.idx].d)
		e.idx++
	}

	if e.idx >= len(e.segs) {
		e.finish()
		return
	}

	seg := e.segs[e.idx]
	e.write(interpolate(seg, now.Sub(e.segStart)))
}

// Busy reports whether an effect (including a trailing floor hold or gap)
// is still playing.
func (e *Engine) Busy() bool {
	return e.busy
}

// Active returns the name of the playing effect, or "" when idle.
func (e *Engine) Active() string {
	if !e.busy {
		return ""
	}
	return e.active
}

// Level returns the last level written to the output.
func (e *Engine) Level() Level {
	return e.level
}

// Stop cancels any effect and turns the motor off.
func (e *Engine) Stop() {
	e.finish()
}

func (e *Engine) finish() {
	e.segs = nil
	e.idx = 0
	e.busy = false
	e.active = ""
	e.written = false
	e.write(LevelOff)
}

// silence drops the playing effect for one that has nothing to play. The
// motor is turned off unless it already is.
func (e *Engine) silence() {
	e.segs = nil
	e.idx = 0
	e.busy = false
	e.active = ""
	if e.level != LevelOff {
		e.written = false
		e.write(LevelOff)
	}
}

func (e *Engine) block(effect Effect) {
	steps := announceSteps(effect)
	if len(steps) == 0 {
		e.silence()
		return
	}
	e.segs = nil
	e.busy = false
	e.active = ""

	e.log.Debug().Str("effect", Name(effect)).Int("steps", len(steps)).Msg("blocking announcement")
	for _, s := range steps {
		e.written = false
		e.write(s.level)
		e.sleep(s.d)
	}
	e.written = false
	e.write(LevelOff)
}

func (e *Engine) write(level Level) {
	if e.written && level == e.level {
		return
	}
	if err := e.out.Set(level); err != nil {
		e.log.Error().Err(err).Uint8("level", uint8(level)).Msg("motor output failed")
	}
	e.level = level
	e.written = true
}

func interpolate(seg segment, elapsed time.Duration) Level {
	if seg.d <= 0 || seg.from == seg.to {
		return seg.to
	}
	from, to := int64(seg.from), int64(seg.to)
	v := from + (to-from)*int64(elapsed)/int64(seg.d)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return Level(v)
}
