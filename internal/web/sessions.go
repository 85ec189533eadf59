package web

import (
	"encoding/json"

	"github.com/sweeney/breath-pacer/internal/sessionlog"
)

// SessionsJSON is the /sessions.json envelope.
type SessionsJSON struct {
	Count    int              `json:"count"`
	Sessions []sessionlog.Log `json:"sessions"`
}

func formatSessions(logs []sessionlog.Log) ([]byte, error) {
	if logs == nil {
		logs = []sessionlog.Log{}
	}
	return json.MarshalIndent(SessionsJSON{Count: len(logs), Sessions: logs}, "", "  ")
}
