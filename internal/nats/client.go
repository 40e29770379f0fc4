package nats

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"vibecircles.web/internal/config"
)

const (
	clientName     = "vibecircles-web"
	connectTimeout = 10 * time.Second
	// publishes buffered while reconnecting; beyond this Publish fails fast
	reconnectBufSize = 1 << 20
)

// Client owns the NATS connection message events go out on
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient connects to cfg.URL. Connection state changes are logged on
// logger, slog.Default() when nil.
func NewClient(cfg config.NATSConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(cfg.URL, connectOptions(cfg, logger)...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, logger: logger}, nil
}

func connectOptions(cfg config.NATSConfig, logger *slog.Logger) []nats.Option {
	return []nats.Option{
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectBufSize(reconnectBufSize),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("Disconnected from NATS, message events are buffered", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// Conn underlying connection, for health checks
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// Publisher message event publisher on this connection
func (c *Client) Publisher() *MessagePublisher {
	return NewMessagePublisher(c.conn)
}

// Close drains pending publishes and closes the connection
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("NATS drain failed", "error", err)
		c.conn.Close()
	}
}
