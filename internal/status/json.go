package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Session       SessionJSON  `json:"session"`
	Ready         bool         `json:"ready"`
	Haptic        string       `json:"haptic,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Presses       PressesJSON  `json:"press_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// SessionJSON is the JSON representation of the session view.
type SessionJSON struct {
	State       string `json:"state"`
	Description string `json:"description"`
	Pattern     string `json:"pattern"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
	Since       string `json:"since,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// PressesJSON is the JSON representation of press counts.
type PressesJSON struct {
	Short    int `json:"short"`
	Long     int `json:"long"`
	VeryLong int `json:"very_long"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	ConfigPath  string `json:"config_path,omitempty"`
	DBPath      string `json:"db_path,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	state := snap.Session.State
	if state == "" {
		state = "UNKNOWN"
	}
	sess := SessionJSON{
		State:       state,
		Description: snap.Session.Description,
		Pattern:     snap.Session.Pattern,
		Round:       snap.Session.Round,
		TotalRounds: snap.Session.TotalRounds,
	}
	if !snap.Session.Since.IsZero() {
		sess.Since = snap.Session.Since.UTC().Format(time.RFC3339)
	}

	inner := StatusInner{
		Session:       sess,
		Ready:         snap.Ready,
		Haptic:        snap.Effect,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Presses: PressesJSON{
			Short:    snap.Presses.Short,
			Long:     snap.Presses.Long,
			VeryLong: snap.Presses.VeryLong,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			ConfigPath:  snap.Config.ConfigPath,
			DBPath:      snap.Config.DBPath,
		},
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type:       n.Type,
			IP:         n.IP,
			Status:     n.Status,
			Gateway:    n.Gateway,
			WifiStatus: n.WifiStatus,
			SSID:       n.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
