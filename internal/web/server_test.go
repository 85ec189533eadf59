package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sweeney/breath-pacer/internal/button"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
	"github.com/sweeney/breath-pacer/internal/status"
)

func newTestServer(t *testing.T, logs LogLister) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:      10,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPPort:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, logs)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(status.Session{State: "IDLE", Description: "Ready - Device is idle", Pattern: "Wim Hof", TotalRounds: 3},
		true, button.Counts{Short: 5, Long: 2}, "")
	tr.SetMQTTConnected(true)

	var sj status.StatusJSON
	resp := getJSON(t, ts.URL+"/index.json", &sj)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "IDLE", sj.Status.Session.State)
	assert.Equal(t, "Wim Hof", sj.Status.Session.Pattern)
	assert.Equal(t, 3, sj.Status.Session.TotalRounds)
	assert.True(t, sj.Status.Ready)
	assert.True(t, sj.Status.MQTT.Connected)
	assert.Equal(t, "tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	assert.Equal(t, 5, sj.Status.Presses.Short)
	assert.Equal(t, 2, sj.Status.Presses.Long)
	assert.EqualValues(t, 10, sj.Status.Config.TickMs)
}

func TestJSONUnknownStateBeforeUpdate(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	var sj status.StatusJSON
	getJSON(t, ts.URL+"/index.json", &sj)

	assert.Equal(t, "UNKNOWN", sj.Status.Session.State)
	assert.False(t, sj.Status.Ready)
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	var sj status.StatusJSON
	getJSON(t, ts.URL+"/index.json", &sj)

	require.NotNil(t, sj.Status.Network)
	assert.Equal(t, "192.168.1.42", sj.Status.Network.IP)
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(status.Session{State: "BREATH_HOLD", Pattern: "Wim Hof", Round: 2, TotalRounds: 3},
		true, button.Counts{}, "pulse")

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, string(body), "BREATH_HOLD")
	assert.Contains(t, string(body), "2 of 3")
	assert.Contains(t, string(body), "pulse")
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestSessionsNotRoutedWithoutStore(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/sessions.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSessionsEndpoint(t *testing.T) {
	store := sessionlog.NewFakeStore()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(context.Background(), sessionlog.Log{ID: id, PatternName: "Box"}))
	}
	ts, _ := newTestServer(t, store)

	var all SessionsJSON
	resp := getJSON(t, ts.URL+"/sessions.json", &all)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, 3, all.Count)

	var two SessionsJSON
	getJSON(t, ts.URL+"/sessions.json?limit=2", &two)
	require.Len(t, two.Sessions, 2)
	assert.Equal(t, "b", two.Sessions[0].ID)
	assert.Equal(t, "c", two.Sessions[1].ID)
}

func TestSessionsEmptyIsArray(t *testing.T) {
	ts, _ := newTestServer(t, sessionlog.NewFakeStore())

	resp, err := http.Get(ts.URL + "/sessions.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"sessions": []`)
}

func TestSessionsBadLimit(t *testing.T) {
	ts, _ := newTestServer(t, sessionlog.NewFakeStore())

	resp, err := http.Get(ts.URL + "/sessions.json?limit=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionsStoreError(t *testing.T) {
	store := sessionlog.NewFakeStore()
	store.ListError = errors.New("database is locked")
	ts, _ := newTestServer(t, store)

	resp, err := http.Get(ts.URL + "/sessions.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	var sj1 status.StatusJSON
	getJSON(t, ts.URL+"/index.json", &sj1)
	assert.False(t, sj1.Status.Ready, "expected Ready=false initially")

	tr.Update(status.Session{State: "RECOVERY"}, true, button.Counts{Short: 1}, "sequence")
	tr.SetMQTTConnected(true)

	var sj2 status.StatusJSON
	getJSON(t, ts.URL+"/index.json", &sj2)
	assert.True(t, sj2.Status.Ready)
	assert.Equal(t, "RECOVERY", sj2.Status.Session.State)
	assert.Equal(t, "sequence", sj2.Status.Haptic)
	assert.True(t, sj2.Status.MQTT.Connected)
}

func TestServeShutdownLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New("", status.NewTracker(time.Now(), status.Config{}), nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/index.json")
	require.NoError(t, err)
	resp.Body.Close()
	http.DefaultClient.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done, "Serve returns nil after Shutdown")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42*time.Second + 300*time.Millisecond, "42s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + 4*time.Second, "2h 0m 4s"},
		{49*time.Hour + 61*time.Second, "2d 1h 1m 1s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUptime(tt.d), tt.d.String())
	}
}
