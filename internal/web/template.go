package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/breath-pacer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Breath Pacer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Breath Pacer</h1>

<h2>Session</h2>
<table>
<tr><th>State</th><td id="state">{{orUnknown .Session.State}}</td></tr>
{{if .Session.Description}}<tr><th>Status</th><td>{{.Session.Description}}</td></tr>{{end}}
<tr><th>Pattern</th><td>{{.Session.Pattern}}</td></tr>
{{if .Session.Round}}<tr><th>Round</th><td>{{.Session.Round}} of {{.Session.TotalRounds}}</td></tr>{{end}}
{{if not .Session.Since.IsZero}}<tr><th>Since</th><td>{{.Session.Since.UTC.Format "15:04:05"}}</td></tr>{{end}}
<tr><th>Haptic</th><td>{{if .Effect}}{{.Effect}}{{else}}idle{{end}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Button Presses</h2>
<table>
<tr><th>Short</th><td>{{.Presses.Short}}</td></tr>
<tr><th>Long</th><td>{{.Presses.Long}}</td></tr>
<tr><th>Very long</th><td>{{.Presses.VeryLong}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
{{if .Config.ConfigPath}}<tr><th>Config</th><td>{{.Config.ConfigPath}}</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a> | <a href="/sessions.json">Sessions</a> | <a href="/metrics">Metrics</a></p>
</body>
</html>
`

// formatUptime renders d as "1d 2h 3m 4s", leaving out leading zero units.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d / (24 * time.Hour))
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
