// Package mqtt provides MQTT publishing of session logs and system events,
// with abstraction for testing.
package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sweeney/breath-pacer/internal/sessionlog"
)

// TopicSessions is the MQTT topic for finished session logs.
const TopicSessions = "breath-pacer/sessions"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "breath-pacer/system"

// Publisher publishes to MQTT.
type Publisher interface {
	// PublishSession sends a finished session log to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishSession(l sessionlog.Log) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SessionPayload is the MQTT message payload for a session log.
type SessionPayload struct {
	Session sessionlog.Log `json:"session"`
}

// FormatSessionPayload creates the JSON payload for a session log.
func FormatSessionPayload(l sessionlog.Log) ([]byte, error) {
	if l.Rounds == nil {
		l.Rounds = []sessionlog.Round{}
	}
	return json.Marshal(SessionPayload{Session: l})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// LogStore adapts a Publisher to the session log store interface, so
// session logs can be teed to the broker alongside local storage.
type LogStore struct {
	Publisher Publisher
}

// Append publishes l.
func (s LogStore) Append(ctx context.Context, l sessionlog.Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Publisher.PublishSession(l)
}
