package gpio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sweeney/breath-pacer/internal/haptic"
)

// DefaultPWMChip is the sysfs directory of the Pi's PWM controller.
const DefaultPWMChip = "/sys/class/pwm/pwmchip0"

// PWMMotor drives the motor through a sysfs PWM channel, so fades and the
// floor level are felt as intended.
type PWMMotor struct {
	chipDir string
	channel int
	period  time.Duration
	level   haptic.Level
	enabled bool
}

// NewPWMMotor exports channel on the PWM chip at chipDir (if needed),
// sets the period for freqHz and enables the output at zero duty.
func NewPWMMotor(chipDir string, channel, freqHz int) (*PWMMotor, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("invalid pwm frequency %d", freqHz)
	}
	m := &PWMMotor{
		chipDir: chipDir,
		channel: channel,
		period:  time.Second / time.Duration(freqHz),
	}

	if _, err := os.Stat(m.dir()); errors.Is(err, os.ErrNotExist) {
		if err := writeInt(filepath.Join(chipDir, "export"), int64(channel)); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
	}
	if err := m.write("duty_cycle", 0); err != nil {
		return nil, err
	}
	if err := m.write("period", m.period.Nanoseconds()); err != nil {
		return nil, err
	}
	if err := m.write("enable", 1); err != nil {
		return nil, err
	}
	m.enabled = true
	return m, nil
}

// Set scales level onto the duty cycle.
func (m *PWMMotor) Set(level haptic.Level) error {
	duty := m.period.Nanoseconds() * int64(level) / 255
	if err := m.write("duty_cycle", duty); err != nil {
		return err
	}
	m.level = level
	return nil
}

// Level returns the last level set.
func (m *PWMMotor) Level() haptic.Level {
	return m.level
}

// Close stops the motor, disables the channel and unexports it.
func (m *PWMMotor) Close() error {
	var errs []error
	if err := m.write("duty_cycle", 0); err != nil {
		errs = append(errs, err)
	}
	if m.enabled {
		if err := m.write("enable", 0); err != nil {
			errs = append(errs, err)
		}
		m.enabled = false
	}
	if err := writeInt(filepath.Join(m.chipDir, "unexport"), int64(m.channel)); err != nil {
		errs = append(errs, fmt.Errorf("unexport pwm channel %d: %w", m.channel, err))
	}
	return errors.Join(errs...)
}

func (m *PWMMotor) dir() string {
	return filepath.Join(m.chipDir, "pwm"+strconv.Itoa(m.channel))
}

func (m *PWMMotor) write(attr string, v int64) error {
	if err := writeInt(filepath.Join(m.dir(), attr), v); err != nil {
		return fmt.Errorf("write pwm %s: %w", attr, err)
	}
	return nil
}

func writeInt(path string, v int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strconv.FormatInt(v, 10)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
