// Package gpio provides the button input and the motor output with hardware
// abstraction. The real implementations use the Linux GPIO character device
// and the sysfs PWM interface. The fakes allow testing without hardware.
package gpio

import (
	"context"

	"github.com/sweeney/breath-pacer/internal/haptic"
)

// Reader reads the push button.
type Reader interface {
	// Read returns true while the button is held.
	// The raw line is active-low: pull-up, button to ground.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Waker blocks until the button is pressed. It is the wake source while
// the device sleeps.
type Waker interface {
	WaitForPress(ctx context.Context) error
}

// Motor drives the vibration motor. Only the haptic engine writes to it.
type Motor interface {
	haptic.Output
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultChip      = "gpiochip0"
	DefaultPinButton = 25
	DefaultPinMotor  = 26
)
