package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
)

// logBuilder accumulates the log of the session in progress.
type logBuilder struct {
	active    bool
	startedAt time.Time
	pattern   config.PatternID
	settings  sessionlog.Settings

	rounds        []sessionlog.Round
	guidedSeconds int
	silentSeconds int
}

func (b *logBuilder) start(now time.Time, cfg config.Config) {
	*b = logBuilder{
		active:    true,
		startedAt: now,
		pattern:   cfg.CurrentPattern,
		settings:  snapshot(cfg),
	}
}

func (b *logBuilder) reset() {
	*b = logBuilder{}
}

func (b *logBuilder) beginRound() {
	b.rounds = append(b.rounds, sessionlog.Round{})
}

// current returns the round being recorded, starting one if needed.
func (b *logBuilder) current() *sessionlog.Round {
	if len(b.rounds) == 0 {
		b.beginRound()
	}
	return &b.rounds[len(b.rounds)-1]
}

func (b *logBuilder) setDynamic(inhale, exhale int) {
	b.settings.DynamicInhale = inhale
	b.settings.DynamicExhale = exhale
}

// elapsed returns the session run time at now.
func (b *logBuilder) elapsed(now time.Time) time.Duration {
	if !b.active {
		return 0
	}
	return now.Sub(b.startedAt)
}

// totalSeconds is the sum of every recorded phase, guided run and silent
// stretch.
func (b *logBuilder) totalSeconds() int {
	total := b.guidedSeconds + b.silentSeconds
	for _, r := range b.rounds {
		total += r.DeepSeconds + r.HoldSeconds + r.RecoverSeconds
	}
	return total
}

func (b *logBuilder) finish(aborted bool) sessionlog.Log {
	rounds := make([]sessionlog.Round, len(b.rounds))
	copy(rounds, b.rounds)
	return sessionlog.Log{
		ID:            uuid.NewString(),
		Date:          b.startedAt.Format("2006-01-02"),
		StartTime:     b.startedAt.Format("15:04:05"),
		PatternID:     int(b.pattern),
		PatternName:   b.pattern.Name(),
		TotalSeconds:  b.totalSeconds(),
		SilentSeconds: b.silentSeconds,
		Aborted:       aborted,
		Rounds:        rounds,
		Settings:      b.settings,
	}
}

func snapshot(cfg config.Config) sessionlog.Settings {
	s := sessionlog.Settings{SilentAfter: cfg.SilentAfterPattern(cfg.CurrentPattern)}
	switch cfg.CurrentPattern {
	case config.WimHof:
		s.Rounds = cfg.CurrentRound
		s.DeepBreathingSeconds = cfg.DeepBreathingSeconds
		s.RecoverySeconds = cfg.RecoverySeconds
	case config.Box:
		s.BoxSeconds = cfg.BoxSeconds
		s.GuidedMinutes = cfg.GuidedBreathingMinutes
	case config.Custom:
		s.CustomPhases = [4]int{cfg.Custom.InhaleSeconds, cfg.Custom.HoldInSeconds, cfg.Custom.ExhaleSeconds, cfg.Custom.HoldOutSeconds}
		s.GuidedMinutes = cfg.GuidedBreathingMinutes
	default:
		s.GuidedMinutes = cfg.GuidedBreathingMinutes
	}
	return s
}

// seconds truncates d to whole seconds.
func seconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
