package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusDisabled     = "disabled"
)

const pingTimeout = 2 * time.Second

// Status dependency states
type Status struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
	NATS     string `json:"nats"`
}

// Healthy no configured dependency is down
func (s *Status) Healthy() bool {
	for _, state := range []string{s.Database, s.Redis, s.NATS} {
		if state == StatusDisconnected {
			return false
		}
	}
	return true
}

// Checker probes the server's backing services. A nil dependency is reported
// as disabled.
type Checker struct {
	pingDB    func(ctx context.Context) error
	pingRedis func(ctx context.Context) error
	natsUp    func() bool
}

// NewChecker creates the checker, any argument may be nil
func NewChecker(nc *nats.Conn, redisClient redis.UniversalClient, db *pgxpool.Pool) *Checker {
	h := &Checker{}
	if db != nil {
		h.pingDB = db.Ping
	}
	if redisClient != nil {
		h.pingRedis = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if nc != nil {
		h.natsUp = nc.IsConnected
	}
	return h
}

// Check runs every probe
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{
		Database: ping(ctx, h.pingDB),
		Redis:    ping(ctx, h.pingRedis),
		NATS:     StatusDisabled,
	}

	if h.natsUp != nil {
		if h.natsUp() {
			status.NATS = StatusConnected
		} else {
			status.NATS = StatusDisconnected
		}
	}

	return status
}

// IsHealthy reports whether every configured dependency answers
func (h *Checker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx).Healthy()
}

func ping(ctx context.Context, fn func(ctx context.Context) error) string {
	if fn == nil {
		return StatusDisabled
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := fn(pingCtx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}
