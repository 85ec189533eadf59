//go:build !linux

package gpio

import (
	"context"
	"errors"

	"github.com/sweeney/breath-pacer/internal/haptic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chipName string, pin int) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (bool, error) {
	return false, errUnsupported
}

// WaitForPress is not implemented on non-Linux platforms.
func (r *RealReader) WaitForPress(ctx context.Context) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// LineMotor is not available on non-Linux platforms.
type LineMotor struct{}

// NewLineMotor returns an error on non-Linux platforms.
func NewLineMotor(chipName string, pin int) (*LineMotor, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (m *LineMotor) Set(level haptic.Level) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (m *LineMotor) Close() error {
	return nil
}
