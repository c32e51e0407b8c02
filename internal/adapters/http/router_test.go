package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/jump/internal/app"
	"github.com/dkeye/jump/internal/app/orch"
	"github.com/dkeye/jump/internal/config"
	"github.com/dkeye/jump/internal/metrics"
)

func newRouter(t *testing.T) (nethttp.Handler, *orch.Orchestrator) {
	t.Helper()
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	reg := app.NewRegistry(nil, m)
	rooms := app.NewRoomRegistry(reg, clock.New(), m)
	o := &orch.Orchestrator{
		Registry: reg,
		Users:    app.NewIdentityDirectory(nil, m),
		Rooms:    rooms,
		Relay:    app.NewSignalRelay(rooms, reg, m),
		Metrics:  m,
	}
	cfg := &config.Config{Mode: "test", Port: config.DefaultPort}
	return SetupRouter(context.Background(), cfg, o, promReg), o
}

func TestHealthz(t *testing.T) {
	r, o := newRouter(t)
	o.Rooms.CreateRoom(o.Users.Create("u1"), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/healthz", nil))
	require.Equal(t, nethttp.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
		Users  int    `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Rooms)
	assert.Equal(t, 1, body.Users)
}

func TestMetricsEndpoint(t *testing.T) {
	r, o := newRouter(t)
	o.Rooms.CreateRoom(o.Users.Create("u1"), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "jump_rooms_created_total 1"))
}

func TestSignalRouteRequiresUpgrade(t *testing.T) {
	r, _ := newRouter(t)
	for _, path := range []string{"/ws", "/api/ws/signal"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, path, nil))
		assert.Equal(t, nethttp.StatusBadRequest, w.Code, path)
	}
}
