package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	removed int
}

func (f *fakeTokens) GetToken(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeTokens) RemoveToken(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.removed++
}

func (f *fakeTokens) set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeTokens) removedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removed
}

func newTestClient(t *testing.T, name string, r chi.Router, tokens *fakeTokens, timeout time.Duration) (*Client, *metrics.Manager) {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	m := metrics.NewManager("test")
	c, err := NewClient(ClientConfig{Name: name, BaseURL: srv.URL + "/api/", Timeout: timeout}, tokens, logger.NewNopLogger(), m)
	require.NoError(t, err)
	return c, m
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
