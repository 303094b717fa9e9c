package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(authURL, listingsURL string) *config.Config {
	return &config.Config{
		Env:         "test",
		AuthAPI:     config.APIConfig{BaseURL: authURL},
		ListingsAPI: config.APIConfig{BaseURL: listingsURL},
		HTTP:        config.HTTPConfig{Timeout: time.Second},
		Storage:     config.StorageConfig{Backend: "memory"},
		Logger:      config.LoggerConfig{Level: "error", Encoding: "json"},
		Listings:    config.ListingsConfig{PageSize: 2},
	}
}

func fakeBackends(t *testing.T) (string, string) {
	t.Helper()

	auth := chi.NewRouter()
	auth.Post("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","user":{"id":7,"username":"alice","first_name":"Alice"},"token":"tok-1"}`))
	})
	auth.Post("/api/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"message":"bye"}`))
	})
	authSrv := httptest.NewServer(auth)
	t.Cleanup(authSrv.Close)

	listings := chi.NewRouter()
	listings.Get("/api/listings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"id":"abc123","title":"Ribeira Charming Duplex","price":80,"location":"Porto","imageUrl":""}]`))
	})
	listingsSrv := httptest.NewServer(listings)
	t.Cleanup(listingsSrv.Close)

	return authSrv.URL + "/api/auth", listingsSrv.URL + "/api"
}

func TestApp_RunEndToEnd(t *testing.T) {
	authURL, listingsURL := fakeBackends(t)
	in := strings.NewReader("login alice secret123\nwhoami\nlistings\nlogout\nwhoami\nquit\n")
	out := &bytes.Buffer{}

	a, err := New(testConfig(authURL, listingsURL), in, out)
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Welcome back, Alice.")
	assert.Contains(t, text, "Alice (alice)")
	assert.Contains(t, text, "abc123")
	assert.Contains(t, text, "Signed out.")
	assert.Contains(t, text, "Not signed in.")
	assert.False(t, a.Credentials.IsLoggedIn(context.Background()))
	assert.Len(t, a.Listings.Listings(), 1)
}

func TestApp_RejectedTokenEndsSession(t *testing.T) {
	auth := chi.NewRouter()
	auth.Post("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","user":{"id":7,"username":"alice","first_name":"Alice"},"token":"tok-1"}`))
	})
	authSrv := httptest.NewServer(auth)
	t.Cleanup(authSrv.Close)

	listings := chi.NewRouter()
	listings.Get("/api/listings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid token."}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	listingsSrv := httptest.NewServer(listings)
	t.Cleanup(listingsSrv.Close)

	a, err := New(testConfig(authSrv.URL+"/api/auth", listingsSrv.URL+"/api"), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	_, err = a.Session.SignIn(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.True(t, a.Session.IsLoggedIn())

	a.Listings.RefreshListings(ctx, 2, 0)

	assert.Equal(t, "Invalid token.", a.Listings.Err())
	assert.False(t, a.Credentials.IsLoggedIn(ctx))
	assert.False(t, a.Session.IsLoggedIn())
	assert.Equal(t, service.StateAnonymous, a.Session.State())
	assert.ErrorIs(t, a.Listings.AddReview(ctx, "abc123", "Lovely stay", nil), service.ErrNotAuthenticated)
}

func TestApp_InvalidBaseURL(t *testing.T) {
	_, err := New(testConfig("localhost:8001", "http://localhost:5000/api"), strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApp_UnavailableStorageDegrades(t *testing.T) {
	cfg := testConfig("http://localhost:8001/api/auth", "http://localhost:5000/api")
	cfg.Storage = config.StorageConfig{Backend: "redis", Redis: config.RedisConfig{Addr: "127.0.0.1:1"}}

	a, err := New(cfg, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	a.Credentials.SaveToken(ctx, "tok")
	assert.False(t, a.Credentials.IsLoggedIn(ctx))
}
