package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/gateway"
	natsadapter "github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/storage/file"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/storage/memory"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/credential"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/port/console"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/repository"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const (
	metricsNamespace = "stay_client"
	shutdownTimeout  = 5 * time.Second
)

type App struct {
	cfg *config.Config
	log logger.Logger

	metrics        *metrics.Manager
	metricsServer  *http.Server
	shutdownTracer tracer.ShutdownFunc
	redisClient    *redis.Client
	natsConn       *nats.Conn

	Credentials *credential.Store
	Session     *service.SessionService
	Listings    *service.ListingService
	console     *console.Console
}

// New wires every component. Optional infrastructure (redis, NATS,
// tracing, metrics endpoint) that fails to come up is logged and skipped;
// only a broken backend configuration is fatal.
func New(cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Configuration loaded",
		"env", cfg.Env, "auth_api", cfg.AuthAPI.BaseURL, "listings_api", cfg.ListingsAPI.BaseURL)

	a := &App{cfg: cfg, log: appLogger}

	shutdownTracer, err := tracer.Init(cfg.Tracing.ServiceName, cfg.Tracing.OTLPEndpoint, appLogger)
	if err != nil {
		appLogger.Warn("Tracing disabled: failed to initialize tracer", "error", err)
		shutdownTracer = func(context.Context) error { return nil }
	}
	a.shutdownTracer = shutdownTracer

	a.metrics = metrics.NewManager(metricsNamespace)
	if cfg.Metrics.Port != "" {
		a.metricsServer = metrics.NewServer(cfg.Metrics.Port, a.metrics.Registry)
	}

	kv := a.buildStorage(ctx)
	a.Credentials = credential.NewStore(kv, appLogger.With("component", "credential"))

	// Any backend rejecting the token ends the session, not just the auth calls.
	onUnauthorized := func(ctx context.Context) {
		if a.Session != nil {
			a.Session.TokenRejected(ctx)
		}
	}

	authClient, err := gateway.NewClient(gateway.ClientConfig{
		Name:           gateway.BackendAuth,
		BaseURL:        cfg.AuthAPI.BaseURL,
		Timeout:        cfg.HTTP.Timeout,
		OnUnauthorized: onUnauthorized,
	}, a.Credentials, appLogger, a.metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create auth gateway: %w", err)
	}
	listingsClient, err := gateway.NewClient(gateway.ClientConfig{
		Name:           gateway.BackendListings,
		BaseURL:        cfg.ListingsAPI.BaseURL,
		Timeout:        cfg.HTTP.Timeout,
		OnUnauthorized: onUnauthorized,
	}, a.Credentials, appLogger, a.metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create listings gateway: %w", err)
	}

	events := a.buildPublisher()

	a.Session = service.NewSessionService(
		gateway.NewAuthGateway(authClient),
		a.Credentials,
		events,
		appLogger.With("component", "session"),
		a.metrics,
	)
	a.Listings = service.NewListingService(
		gateway.NewListingsGateway(listingsClient),
		a.Session,
		events,
		appLogger.With("component", "listings"),
		a.metrics,
		cfg.Listings.PageSize,
	)
	a.console = console.New(in, out, a.Session, a.Listings, appLogger.With("component", "console"))

	return a, nil
}

func (a *App) buildStorage(ctx context.Context) repository.KeyValueStore {
	cfg := a.cfg.Storage
	switch strings.ToLower(cfg.Backend) {
	case "file", "":
		store, err := file.NewStore(file.StoreConfig{Path: cfg.FilePath, Passphrase: cfg.Passphrase})
		if err != nil {
			a.log.Warn("Credential storage unavailable, session will not persist", "backend", "file", "error", err)
			return nil
		}
		a.log.Info("Credential storage initialized", "backend", "file", "path", store.Path(), "sealed", cfg.Passphrase != "")
		return store
	case "redis":
		client, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			a.log.Warn("Credential storage unavailable, session will not persist", "backend", "redis", "error", err)
			return nil
		}
		a.redisClient = client
		a.log.Info("Credential storage initialized", "backend", "redis", "addr", cfg.Redis.Addr)
		return redisadapter.NewKeyValueStore(client, cfg.Redis.KeyPrefix)
	case "memory":
		a.log.Info("Credential storage initialized", "backend", "memory")
		return memory.NewStore()
	case "none":
		a.log.Info("Credential storage disabled")
		return nil
	default:
		a.log.Warn("Unknown storage backend, session will not persist", "backend", cfg.Backend)
		return nil
	}
}

func (a *App) buildPublisher() service.EventPublisher {
	if a.cfg.NATS.URL == "" {
		a.log.Info("Domain events disabled: NATS_URL is not set")
		return nil
	}
	conn, err := natsadapter.NewConnection(a.cfg.NATS, a.log)
	if err != nil {
		a.log.Warn("Domain events disabled", "error", err)
		return nil
	}
	pub, err := natsadapter.NewEventPublisher(conn, a.cfg.NATS.SubjectPrefix)
	if err != nil {
		conn.Close()
		a.log.Warn("Domain events disabled", "error", err)
		return nil
	}
	a.natsConn = conn
	a.log.Info("Domain events enabled", "url", a.cfg.NATS.URL, "subject_prefix", a.cfg.NATS.SubjectPrefix)
	return pub
}

// Run restores the session, loads the first page and hands control to the
// console until the user quits or a signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.Close()

	if a.metricsServer != nil {
		go func() {
			a.log.Info("Metrics server listening", "addr", a.metricsServer.Addr)
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	a.Session.Start(ctx)
	a.Listings.Start(ctx)

	err := a.console.Run(ctx)
	if errors.Is(err, context.Canceled) {
		a.log.Info("Shutdown signal received")
		return nil
	}
	return err
}

// Close releases every resource New acquired. It is safe to call twice.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.Listings != nil {
		a.Listings.Close()
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down metrics server", "error", err)
		}
		a.metricsServer = nil
	}
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Warn("Error draining NATS connection", "error", err)
		}
		a.natsConn = nil
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", "error", err)
		}
		a.redisClient = nil
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.log.Error("Error shutting down tracer", "error", err)
		}
		a.shutdownTracer = nil
	}
	_ = a.log.Sync()
}
