package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/breath-pacer/internal/gpio"
)

const (
	releasePoll    = 10 * time.Millisecond
	releaseTimeout = 5 * time.Second
)

// buttonSleeper idles the device until the button is pressed. The motor
// is already off when Sleep is called.
type buttonSleeper struct {
	ctx    context.Context
	waker  gpio.Waker
	reader gpio.Reader
	now    func() time.Time
	pause  func(time.Duration)
}

// Sleep blocks until the wake press, then waits for the button to be let
// go so the wake press is not classified once the device is ready.
func (s *buttonSleeper) Sleep() (time.Time, error) {
	if err := s.waker.WaitForPress(s.ctx); err != nil {
		return time.Time{}, fmt.Errorf("wait for wake press: %w", err)
	}
	for waited := time.Duration(0); waited < releaseTimeout; waited += releasePoll {
		pressed, err := s.reader.Read()
		if err != nil || !pressed {
			break
		}
		s.pause(releasePoll)
	}
	return s.now(), nil
}
