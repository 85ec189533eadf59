package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/breath-pacer/internal/logging"
)

// Store loads and saves the device configuration.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}

// FileStore persists Config as YAML. Writes are atomic and durable.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

// NewFileStore creates a store backed by path. The directory is created
// on first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	return &FileStore{path: path, log: logging.WithComponent("config")}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// fileConfig is the on-disk layout. Slices instead of arrays so files
// with short or long tables still parse; Normalize repairs them.
type fileConfig struct {
	Version int `yaml:"version"`

	MaxRounds            int `yaml:"max_rounds"`
	CurrentRound         int `yaml:"current_round"`
	DeepBreathingSeconds int `yaml:"deep_breathing_seconds"`
	RecoverySeconds      int `yaml:"recovery_seconds"`

	SilentPhaseMaxMinutes         int  `yaml:"silent_phase_max_minutes"`
	SilentReminderEnabled         bool `yaml:"silent_reminder_enabled"`
	SilentReminderIntervalMinutes int  `yaml:"silent_reminder_interval_minutes"`

	CurrentPattern int    `yaml:"current_pattern"`
	PatternOrder   []int  `yaml:"pattern_order"`
	Include        []bool `yaml:"include"`
	SilentAfter    []bool `yaml:"silent_after"`

	BoxSeconds             int          `yaml:"box_seconds"`
	GuidedBreathingMinutes int          `yaml:"guided_breathing_minutes"`
	Custom                 CustomPhases `yaml:"custom"`

	IdleTimeoutMinutes        int  `yaml:"idle_timeout_minutes"`
	StartConfirmationHaptics  bool `yaml:"start_confirmation_haptics"`
	AbortSaveThresholdSeconds int  `yaml:"abort_save_threshold_seconds"`
	RoundSelectDelayMs        int  `yaml:"round_select_delay_ms"`
	AnnounceIP                bool `yaml:"announce_ip"`

	Button ButtonConfig `yaml:"button"`
}

// Load returns the saved configuration, or defaults if none exists. A file
// that cannot be parsed is replaced by defaults (logged, not an error);
// values are always normalized.
func (s *FileStore) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config: %w", err)
	}

	return s.decode(data), nil
}

func (s *FileStore) decode(data []byte) Config {
	fc := toFile(Default())
	// Files from older versions lack newer fields; those keep the
	// defaults pre-filled above.
	fc.Version = 1
	if err := yaml.Unmarshal(data, &fc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("config unreadable, using defaults")
		return Default()
	}
	if fc.Version > CurrentVersion {
		s.log.Warn().Int("version", fc.Version).Int("supported", CurrentVersion).Msg("config written by newer version")
	} else if fc.Version < CurrentVersion {
		s.log.Info().Int("from", fc.Version).Int("to", CurrentVersion).Msg("upgrading config")
	}
	return Normalize(fromFile(fc))
}

// Save normalizes and writes c.
func (s *FileStore) Save(c Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(toFile(Normalize(c)))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	pending, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.log.Debug().Err(err).Msg("cleanup pending config file")
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}

// Marshal renders c in the on-disk YAML layout.
func Marshal(c Config) ([]byte, error) {
	return yaml.Marshal(toFile(Normalize(c)))
}

func toFile(c Config) fileConfig {
	fc := fileConfig{
		Version:                       c.Version,
		MaxRounds:                     c.MaxRounds,
		CurrentRound:                  c.CurrentRound,
		DeepBreathingSeconds:          c.DeepBreathingSeconds,
		RecoverySeconds:               c.RecoverySeconds,
		SilentPhaseMaxMinutes:         c.SilentPhaseMaxMinutes,
		SilentReminderEnabled:         c.SilentReminderEnabled,
		SilentReminderIntervalMinutes: c.SilentReminderIntervalMinutes,
		CurrentPattern:                int(c.CurrentPattern),
		Include:                       append([]bool(nil), c.Include[:]...),
		SilentAfter:                   append([]bool(nil), c.SilentAfter[:]...),
		BoxSeconds:                    c.BoxSeconds,
		GuidedBreathingMinutes:        c.GuidedBreathingMinutes,
		Custom:                        c.Custom,
		IdleTimeoutMinutes:            c.IdleTimeoutMinutes,
		StartConfirmationHaptics:      c.StartConfirmationHaptics,
		AbortSaveThresholdSeconds:     c.AbortSaveThresholdSeconds,
		RoundSelectDelayMs:            c.RoundSelectDelayMs,
		AnnounceIP:                    c.AnnounceIP,
		Button:                        c.Button,
	}
	for _, p := range c.PatternOrder {
		fc.PatternOrder = append(fc.PatternOrder, int(p))
	}
	return fc
}

func fromFile(fc fileConfig) Config {
	c := Config{
		Version:                       fc.Version,
		MaxRounds:                     fc.MaxRounds,
		CurrentRound:                  fc.CurrentRound,
		DeepBreathingSeconds:          fc.DeepBreathingSeconds,
		RecoverySeconds:               fc.RecoverySeconds,
		SilentPhaseMaxMinutes:         fc.SilentPhaseMaxMinutes,
		SilentReminderEnabled:         fc.SilentReminderEnabled,
		SilentReminderIntervalMinutes: fc.SilentReminderIntervalMinutes,
		CurrentPattern:                PatternID(fc.CurrentPattern),
		BoxSeconds:                    fc.BoxSeconds,
		GuidedBreathingMinutes:        fc.GuidedBreathingMinutes,
		Custom:                        fc.Custom,
		IdleTimeoutMinutes:            fc.IdleTimeoutMinutes,
		StartConfirmationHaptics:      fc.StartConfirmationHaptics,
		AbortSaveThresholdSeconds:     fc.AbortSaveThresholdSeconds,
		RoundSelectDelayMs:            fc.RoundSelectDelayMs,
		AnnounceIP:                    fc.AnnounceIP,
		Button:                        fc.Button,
	}

	order := make([]PatternID, 0, len(fc.PatternOrder))
	for _, p := range fc.PatternOrder {
		order = append(order, PatternID(p))
	}
	c.PatternOrder = NormalizeOrder(order)

	def := Default()
	for i := 0; i < NumPatterns; i++ {
		c.Include[i] = def.Include[i]
		if i < len(fc.Include) {
			c.Include[i] = fc.Include[i]
		}
		c.SilentAfter[i] = def.SilentAfter[i]
		if i < len(fc.SilentAfter) {
			c.SilentAfter[i] = fc.SilentAfter[i]
		}
	}
	return c
}
