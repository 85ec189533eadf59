package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/breath-pacer/internal/sessionlog"
)

func sampleLog() sessionlog.Log {
	return sessionlog.Log{
		ID:           "6b1f",
		Date:         "2026-02-10",
		StartTime:    "08:30:00",
		PatternID:    1,
		PatternName:  "Wim Hof",
		TotalSeconds: 125,
		Rounds:       []sessionlog.Round{{DeepSeconds: 30, HoldSeconds: 80, RecoverSeconds: 15}},
		Settings:     sessionlog.Settings{Rounds: 1, SilentAfter: false},
	}
}

func TestTopics(t *testing.T) {
	if TopicSessions != "breath-pacer/sessions" {
		t.Errorf("unexpected session topic: %s", TopicSessions)
	}
	if TopicSystem != "breath-pacer/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSessionPayload(t *testing.T) {
	payload, err := FormatSessionPayload(sampleLog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed struct {
		Session struct {
			Pattern string `json:"pattern"`
			Total   int    `json:"total"`
			Rounds  []struct {
				Deep    int `json:"deep"`
				Hold    int `json:"hold"`
				Recover int `json:"recover"`
			} `json:"rounds"`
		} `json:"session"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Session.Pattern != "Wim Hof" || parsed.Session.Total != 125 {
		t.Errorf("unexpected session: %+v", parsed.Session)
	}
	if len(parsed.Session.Rounds) != 1 || parsed.Session.Rounds[0].Hold != 80 {
		t.Errorf("unexpected rounds: %+v", parsed.Session.Rounds)
	}
}

func TestFormatSessionPayloadEmptyRounds(t *testing.T) {
	l := sampleLog()
	l.Rounds = nil
	payload, err := FormatSessionPayload(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	rounds, ok := parsed["session"]["rounds"].([]interface{})
	if !ok || len(rounds) != 0 {
		t.Errorf("expected empty rounds array, got %v", parsed["session"]["rounds"])
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			name:  "shutdown",
			event: SystemEvent{Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC), Event: "SHUTDOWN", Reason: "SIGTERM"},
			want:  `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		},
		{
			name:  "will",
			event: SystemEvent{Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC), Event: "SHUTDOWN", Reason: "MQTT_DISCONNECT"},
			want:  `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`,
		},
		{
			name:  "reconnected omits reason",
			event: SystemEvent{Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC), Event: "RECONNECTED"},
			want:  `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`,
		},
		{
			name:  "timezone converted to UTC",
			event: SystemEvent{Timestamp: time.Date(2026, 2, 10, 9, 30, 0, 0, time.FixedZone("CET", 3600)), Event: "STARTUP"},
			want:  `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"STARTUP"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := FormatSystemPayload(tt.event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(payload) != tt.want {
				t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, tt.want)
			}
		})
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"system":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "HEARTBEAT", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.PublishSession(sampleLog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Event: "HEARTBEAT"})

	if len(f.Sessions) != 1 || len(f.SessionPayloads) != 1 {
		t.Errorf("expected 1 session, got %d", len(f.Sessions))
	}
	if got := f.Events(); len(got) != 2 || got[0] != "STARTUP" || got[1] != "HEARTBEAT" {
		t.Errorf("unexpected events: %v", got)
	}
	if !f.SystemEvents[0].Retained || f.SystemEvents[1].Retained {
		t.Error("retained flag not recorded")
	}

	f.Reset()
	if len(f.Sessions) != 0 || len(f.SystemEvents) != 0 || f.Closed {
		t.Error("reset should clear recorded messages")
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	f.PublishSystemError = errors.New("broker down")

	if err := f.PublishSession(sampleLog()); err == nil {
		t.Error("expected session publish error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected system publish error")
	}
	if len(f.Sessions) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestLogStore(t *testing.T) {
	f := NewFakePublisher()
	var store sessionlog.Store = LogStore{Publisher: f}

	if err := store.Append(context.Background(), sampleLog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Sessions) != 1 {
		t.Fatalf("expected 1 published session, got %d", len(f.Sessions))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Append(ctx, sampleLog()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
