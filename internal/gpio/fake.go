package gpio

import (
	"context"
	"errors"
)

// FakeReader is a test double that returns scripted button samples.
type FakeReader struct {
	// Samples contains scripted pressed values to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Waits counts WaitForPress calls; WaitError, if set, is returned by it.
	Waits     int
	WaitError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// WaitForPress returns immediately, as if the button had been pressed.
func (f *FakeReader) WaitForPress(ctx context.Context) error {
	f.Waits++
	if f.WaitError != nil {
		return f.WaitError
	}
	return ctx.Err()
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// Hold returns samples for the button held for n reads and then released
// for release reads.
func Hold(n, release int) []bool {
	s := make([]bool, 0, n+release)
	for i := 0; i < n; i++ {
		s = append(s, true)
	}
	for i := 0; i < release; i++ {
		s = append(s, false)
	}
	return s
}
