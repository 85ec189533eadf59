//go:build linux

package gpio

import (
	"context"
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/breath-pacer/internal/haptic"
)

// RealReader reads the button from actual hardware using the Linux GPIO
// character device. Falling edges are also delivered as wake events.
type RealReader struct {
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	edges chan struct{}
}

// NewRealReader requests pin on chip as a pulled-up input with falling
// edge detection.
func NewRealReader(chipName string, pin int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: chip, edges: make(chan struct{}, 1)}
	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(r.onEdge),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	r.line = line
	return r, nil
}

func (r *RealReader) onEdge(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	select {
	case r.edges <- struct{}{}:
	default:
	}
}

// Read returns true while the button is held (raw line low).
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 0, nil
}

// WaitForPress blocks until the next falling edge or ctx is done.
// Edges seen before the call are discarded.
func (r *RealReader) WaitForPress(ctx context.Context) error {
	select {
	case <-r.edges:
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.edges:
		return nil
	}
}

// Close releases GPIO resources.
// Reconfigures the pin to input with pull-down (matching Pi boot defaults)
// before closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error
	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LineMotor switches the motor through a plain output line. Any level
// above zero is full on; fades become a steady buzz.
type LineMotor struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewLineMotor requests pin on chip as an output, initially low.
func NewLineMotor(chipName string, pin int) (*LineMotor, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request motor pin %d: %w", pin, err)
	}
	return &LineMotor{chip: chip, line: line}, nil
}

// Set drives the line high for any non-zero level.
func (m *LineMotor) Set(level haptic.Level) error {
	v := 0
	if level > haptic.LevelOff {
		v = 1
	}
	if err := m.line.SetValue(v); err != nil {
		return fmt.Errorf("set motor pin: %w", err)
	}
	return nil
}

// Close turns the motor off and releases the line as an input.
func (m *LineMotor) Close() error {
	var errs []error
	if m.line != nil {
		if err := m.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("stop motor: %w", err))
		}
		if err := m.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure motor pin: %w", err))
		}
		if err := m.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motor pin: %w", err))
		}
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
