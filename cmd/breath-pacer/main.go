// Command breath-pacer runs the breathing pacer: it reads the push button,
// drives the vibration motor through guided breathing sessions and
// publishes finished sessions to MQTT.
package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/breath-pacer/internal/gpio"
	"github.com/sweeney/breath-pacer/internal/logging"
)

// options are the daemon flags shared by every subcommand.
type options struct {
	tick       time.Duration
	bootDelay  time.Duration
	heartbeat  time.Duration
	chip       string
	pinButton  int
	pinMotor   int
	pwmChip    string
	pwmChannel int
	broker     string
	clientID   string
	httpAddr   string
	configPath string
	dbPath     string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "breath-pacer",
		Short:        "Haptic breathing exercise pacer",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Configure(logging.Config{Level: opts.logLevel})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.chip, "chip", gpio.DefaultChip, "GPIO chip name")
	pf.IntVar(&opts.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin number for the push button")
	pf.StringVar(&opts.configPath, "config", "/var/lib/breath-pacer/config.yaml", "Device config file")
	pf.StringVar(&opts.dbPath, "db", "/var/lib/breath-pacer/sessions.db", "Session log database")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")

	cmd.AddCommand(
		newRunCmd(opts),
		newButtonCmd(opts),
		newLogsCmd(opts),
		newConfigCmd(opts),
	)
	addRunFlags(cmd, opts)
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pacer daemon (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(opts)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

// addRunFlags registers the daemon-only flags. They are added to both the
// root command and run, so "breath-pacer --tick 5ms" works too.
func addRunFlags(cmd *cobra.Command, opts *options) {
	f := cmd.Flags()
	f.DurationVar(&opts.tick, "tick", 10*time.Millisecond, "Control loop interval")
	f.DurationVar(&opts.bootDelay, "boot-delay", time.Second, "Time spent in Booting before the device is ready")
	f.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.IntVar(&opts.pinMotor, "pin-motor", gpio.DefaultPinMotor, "BCM pin number for the motor (on/off drive)")
	f.StringVar(&opts.pwmChip, "pwm-chip", "", `sysfs PWM chip for proportional motor drive (e.g. `+gpio.DefaultPWMChip+`; empty uses --pin-motor)`)
	f.IntVar(&opts.pwmChannel, "pwm-channel", 0, "PWM channel on --pwm-chip")
	f.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	f.StringVar(&opts.clientID, "client-id", "breath-pacer", "MQTT client ID")
	f.StringVar(&opts.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
}
