package main

import (
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/gpio"
	"github.com/sweeney/breath-pacer/internal/haptic"
	"github.com/sweeney/breath-pacer/internal/logging"
	"github.com/sweeney/breath-pacer/internal/metrics"
	"github.com/sweeney/breath-pacer/internal/mqtt"
	"github.com/sweeney/breath-pacer/internal/session"
	"github.com/sweeney/breath-pacer/internal/status"
)

// configWatcher is the part of config.Watcher the loop polls.
type configWatcher interface {
	TakeChanged() bool
	MarkChanged()
}

// loopDeps are runLoop's collaborators. tracker, mqttStatus and watcher
// may be nil.
type loopDeps struct {
	reader     gpio.Reader
	classifier *button.Classifier
	engine     *haptic.Engine
	controller *session.Controller
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	watcher    configWatcher

	bootDelay time.Duration
	heartbeat time.Duration // 0 disables
	now       func() time.Time
}

// runLoop drives the classifier, the haptic engine and the session
// controller once per tick until a signal arrives. Every tick runs in that
// order; effects issued by the controller start playing on the same tick.
func runLoop(d loopDeps, tick <-chan time.Time, sig <-chan os.Signal) error {
	log := logging.WithComponent("loop")
	lastHeartbeat := d.now()

	for {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			d.engine.Stop()
			event := mqtt.SystemEvent{
				Timestamp: d.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				updateTracker(d)
				event.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Warn().Err(err).Msg("failed to publish shutdown event")
			} else {
				log.Info().Msg("published shutdown event")
			}
			return nil

		case <-tick:
			t := d.now()

			var out button.Output
			pressed, err := d.reader.Read()
			if err != nil {
				// Timers and effects keep running; the sample is just missing.
				log.Warn().Err(err).Msg("gpio read error")
			} else {
				out = d.classifier.Update(pressed, t)
			}
			if out.Press != button.NoPress {
				log.Debug().Str("press", out.Press.String()).Str("state", d.controller.State().String()).Msg("button press")
				metrics.RecordPress(out.Press.String())
			}
			if out.Cue != button.NoCue {
				metrics.RecordCue(out.Cue.String())
			}

			d.engine.Tick(t)
			d.controller.Update(session.Input{Press: out.Press, Cue: out.Cue, Time: t})

			// Booting is also re-entered after waking from sleep.
			if d.controller.State() == session.Booting && t.Sub(d.controller.StateEnteredAt()) >= d.bootDelay {
				d.controller.FinishBooting(t)
			}

			if d.watcher != nil && d.watcher.TakeChanged() {
				reloadConfig(d)
			}

			if d.heartbeat > 0 && t.Sub(lastHeartbeat) >= d.heartbeat {
				lastHeartbeat = t
				publishHeartbeat(d, t)
			}

			if d.tracker != nil {
				updateTracker(d)
			}
		}
	}
}

// reloadConfig applies an edited config file. While a session runs or a
// value change is pending the reload is retried on a later tick.
func reloadConfig(d loopDeps) {
	log := logging.WithComponent("loop")
	err := d.controller.ReloadConfig()
	switch {
	case errors.Is(err, session.ErrSessionActive), errors.Is(err, session.ErrCommitPending):
		d.watcher.MarkChanged()
	case err != nil:
		log.Error().Err(err).Msg("config reload failed")
	default:
		d.classifier.SetThresholds(thresholds(d.controller.Config().Button))
	}
}

func publishHeartbeat(d loopDeps, t time.Time) {
	log := logging.WithComponent("loop")
	counts := d.classifier.CountsSnapshot()
	log.Info().
		Str("state", d.controller.State().String()).
		Int("short", counts.Short).
		Int("long", counts.Long).
		Int("very_long", counts.VeryLong).
		Msg("heartbeat")

	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "HEARTBEAT",
	}
	if d.tracker != nil {
		// Refresh network info for heartbeat
		if net := readNetworkInfo(); net != nil {
			d.tracker.SetNetwork(net)
		}
		updateTracker(d)
		event.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "HEARTBEAT", "")
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		log.Warn().Err(err).Msg("heartbeat publish error")
	}
}

func updateTracker(d loopDeps) {
	c := d.controller
	cfg := c.Config()
	d.tracker.Update(status.Session{
		State:       c.State().String(),
		Description: c.State().Description(),
		Pattern:     cfg.CurrentPattern.Name(),
		Round:       c.SessionRound(),
		TotalRounds: c.TotalRounds(),
		Since:       c.StateEnteredAt(),
	}, c.State() != session.Booting, d.classifier.CountsSnapshot(), d.engine.Active())
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}
