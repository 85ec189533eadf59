// Package status provides a thread-safe status tracker for the breath-pacer
// daemon. It is written by the tick loop and read by HTTP handlers and the
// heartbeat publisher.
package status

import (
	"net"
	"sync"
	"time"

	"github.com/sweeney/breath-pacer/internal/button"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// PreventsSleep reports whether the network subsystem needs the device
// awake: while it is still connecting or serving the setup hotspot.
func (n *NetworkInfo) PreventsSleep() bool {
	if n == nil {
		return false
	}
	return n.Status == "connecting" || n.Status == "hotspot"
}

// LastOctet returns the last byte of the IPv4 address, if there is one.
func (n *NetworkInfo) LastOctet() (int, bool) {
	if n == nil {
		return 0, false
	}
	ip := net.ParseIP(n.IP).To4()
	if ip == nil {
		return 0, false
	}
	return int(ip[3]), true
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	ConfigPath  string
	DBPath      string
}

// Session is the state machine's view for display.
type Session struct {
	State       string
	Description string
	Pattern     string
	Round       int
	TotalRounds int
	Since       time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Session       Session
	Ready         bool // boot finished
	Presses       button.Counts
	Effect        string // active haptic effect, "" when idle
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the session view, press counts and active effect.
// Called from runLoop on every tick.
func (t *Tracker) Update(sess Session, ready bool, presses button.Counts, effect string) {
	t.mu.Lock()
	t.snap.Session = sess
	t.snap.Ready = ready
	t.snap.Presses = presses
	t.snap.Effect = effect
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Network returns the last network info, or nil.
func (t *Tracker) Network() *NetworkInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Network
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
