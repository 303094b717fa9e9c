package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestManager_ObserveRequest(t *testing.T) {
	m := NewManager("test")

	m.ObserveRequest("listings", http.MethodGet, "/listings", 200, 20*time.Millisecond)
	m.ObserveRequest("listings", http.MethodGet, "/listings", 200, 10*time.Millisecond)
	m.ObserveRequest("auth", http.MethodPost, "/login/", 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("listings", "GET", "/listings", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayNoResponseTotal.WithLabelValues("auth", "/login/")))
}

func TestManager_NilIsSafe(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.ObserveRequest("auth", "GET", "/profile/", 200, time.Millisecond)
		m.SessionEvent("signed_in")
		m.SetFavorites(3)
	})
}

func TestNewServer_ServesMetrics(t *testing.T) {
	m := NewManager("test")
	m.SessionEvent("signed_in")
	srv := NewServer("0", m.Registry)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_session_events_total{event="signed_in"} 1`)
}
