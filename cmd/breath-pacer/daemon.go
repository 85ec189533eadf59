package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/gpio"
	"github.com/sweeney/breath-pacer/internal/haptic"
	"github.com/sweeney/breath-pacer/internal/logging"
	"github.com/sweeney/breath-pacer/internal/mqtt"
	"github.com/sweeney/breath-pacer/internal/session"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
	"github.com/sweeney/breath-pacer/internal/status"
	"github.com/sweeney/breath-pacer/internal/web"
)

// pwmFrequency is the motor PWM carrier frequency.
const pwmFrequency = 5000

func runDaemon(opts *options) error {
	log := logging.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize GPIO
	reader, err := gpio.NewRealReader(opts.chip, opts.pinButton)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	motor, err := openMotor(opts)
	if err != nil {
		return fmt.Errorf("init motor: %w", err)
	}
	defer motor.Close()

	engine := haptic.NewEngine(motor)
	defer engine.Stop()

	// Stores
	cfgStore, err := config.NewFileStore(opts.configPath)
	if err != nil {
		return fmt.Errorf("init config store: %w", err)
	}
	db, err := sessionlog.OpenSQLite(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer db.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(opts.broker, opts.clientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      opts.tick.Milliseconds(),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Broker:      opts.broker,
		HTTPPort:    opts.httpAddr,
		ConfigPath:  opts.configPath,
		DBPath:      opts.dbPath,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	controller, err := session.NewController(session.Deps{
		Haptics:     engine,
		ConfigStore: cfgStore,
		LogStore:    sessionlog.Tee{db, mqtt.LogStore{Publisher: publisher}},
		Sleeper: &buttonSleeper{
			ctx:    ctx,
			waker:  reader,
			reader: reader,
			now:    time.Now,
			pause:  time.Sleep,
		},
		PreventSleep: func() bool { return tracker.Network().PreventsSleep() },
		BootNumber:   func() (int, bool) { return tracker.Network().LastOctet() },
	}, time.Now())
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	classifier := button.NewClassifier(thresholds(controller.Config().Button))

	// The watcher needs the directory to exist before the first save.
	if err := os.MkdirAll(filepath.Dir(opts.configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	watcher := config.NewWatcher(opts.configPath)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		log.Info().Msg("published startup event")
	}

	gctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(gctx)

	if err := watcher.Start(gctx); err != nil {
		// Reloads then need a restart; the daemon still works.
		log.Warn().Err(err).Msg("config watcher unavailable")
		watcher = nil
	} else {
		g.Go(func() error {
			<-gctx.Done()
			watcher.Stop()
			return nil
		})
	}

	// Start HTTP status server
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker, db)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil {
				log.Error().Err(err).Str("addr", opts.httpAddr).Msg("http server error")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			return srv.Shutdown(sctx)
		})
		log.Info().Str("addr", opts.httpAddr).Msg("http status server listening")
	}

	log.Info().
		Dur("tick", opts.tick).
		Dur("boot_delay", opts.bootDelay).
		Str("broker", opts.broker).
		Dur("heartbeat", opts.heartbeat).
		Msg("started")

	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	loopErr := runLoop(loopDeps{
		reader:     reader,
		classifier: classifier,
		engine:     engine,
		controller: controller,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		watcher:    optionalWatcher(watcher),
		bootDelay:  opts.bootDelay,
		heartbeat:  opts.heartbeat,
		now:        time.Now,
	}, ticker.C, sigCh)

	cancel()
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
	return loopErr
}

// optionalWatcher keeps a nil *config.Watcher from becoming a non-nil
// interface value.
func optionalWatcher(w *config.Watcher) configWatcher {
	if w == nil {
		return nil
	}
	return w
}

func openMotor(opts *options) (gpio.Motor, error) {
	if opts.pwmChip != "" {
		m, err := gpio.NewPWMMotor(opts.pwmChip, opts.pwmChannel, pwmFrequency)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	m, err := gpio.NewLineMotor(opts.chip, opts.pinMotor)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func thresholds(b config.ButtonConfig) button.Thresholds {
	return button.Thresholds{
		Debounce:      time.Duration(b.DebounceMs) * time.Millisecond,
		LongPress:     time.Duration(b.LongPressMs) * time.Millisecond,
		VeryLongPress: time.Duration(b.VeryLongPressMs) * time.Millisecond,
	}
}
