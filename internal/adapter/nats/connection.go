package nats

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/nats-io/nats.go"
)

const (
	clientName = "stay-client event publisher"

	fallbackConnectTimeout = 5 * time.Second
	fallbackReconnectWait  = 2 * time.Second
)

// connectOptions turns cfg into nats options. Zero durations fall back to
// the config defaults; a negative MaxReconnects keeps reconnecting forever.
func connectOptions(cfg config.NATSConfig, log logger.Logger) []nats.Option {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = fallbackConnectTimeout
	}
	wait := cfg.ReconnectWait
	if wait <= 0 {
		wait = fallbackReconnectWait
	}

	return []nats.Option{
		nats.Name(clientName),
		nats.Timeout(timeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(wait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("Event bus connection lost", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("Event bus connection restored", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Debug("Event bus connection closed")
		}),
	}
}

func NewConnection(cfg config.NATSConfig, log logger.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL, connectOptions(cfg, log)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event bus at %s: %w", cfg.URL, err)
	}
	log.Info("Event bus connected", "url", nc.ConnectedUrl(), "max_reconnects", cfg.MaxReconnects)
	return nc, nil
}
