package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/login-mail/internal/domain"
	"github.com/ignite/login-mail/internal/pkg/logger"
)

const (
	// DefaultThreshold is how many requests an IP may make per window.
	DefaultThreshold = 3

	// DefaultWindow is the counter's time-to-live.
	DefaultWindow = 10 * time.Minute
)

// Counter is the volatile fixed-window counter. Hit must be atomic per key:
// it reports whether the hit is allowed under the threshold and the counter
// value after the call, initializing the key with the window TTL on first
// touch.
type Counter interface {
	Hit(ctx context.Context, key string, threshold int, window time.Duration) (allowed bool, count int64, err error)
}

// BanRepository is the durable ban store.
type BanRepository interface {
	// IsBanned reports whether ip has an active ban.
	IsBanned(ctx context.Context, ip string) (bool, error)

	// Ban records a ban. Repeated bans of the same IP are no-ops (idempotent).
	Ban(ctx context.Context, ban *domain.IPBan) error

	// Remove lifts a ban. Returns ErrBanNotFound if none exists.
	Remove(ctx context.Context, ip string) error

	// List returns all active bans, newest first.
	List(ctx context.Context) ([]domain.IPBan, error)
}

// Controller gates requests by source IP. It is stateless per call; the
// counter and ban stores own all state and must be safe for concurrent use.
type Controller struct {
	counter   Counter
	bans      BanRepository
	threshold int
	window    time.Duration
}

// NewController wires an admission controller. Non-positive threshold or
// window select the defaults.
func NewController(counter Counter, bans BanRepository, threshold int, window time.Duration) *Controller {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Controller{counter: counter, bans: bans, threshold: threshold, window: window}
}

// Admit counts a request from ip and reports whether it may proceed. When
// the window threshold is breached the IP is durably banned; the ban write
// is idempotent, so repeated breaches do not accumulate records.
//
// Callers should check IsBanned first and skip Admit for banned IPs, so a
// standing ban does not keep feeding the counter.
func (c *Controller) Admit(ctx context.Context, ip string) (bool, error) {
	allowed, count, err := c.counter.Hit(ctx, ip, c.threshold, c.window)
	if err != nil {
		return false, fmt.Errorf("count request: %w", err)
	}
	if allowed {
		return true, nil
	}

	ban := &domain.IPBan{
		IP:     ip,
		Reason: fmt.Sprintf("more than %d send requests in %s", c.threshold, c.window),
	}
	if err := c.bans.Ban(ctx, ban); err != nil {
		return false, fmt.Errorf("record ban: %w", err)
	}
	logger.Warn("ip banned", "ip", ip, "count", fmt.Sprint(count), "threshold", fmt.Sprint(c.threshold))
	return false, nil
}

// IsBanned reports whether ip holds a durable ban. Pure read, no counting.
func (c *Controller) IsBanned(ctx context.Context, ip string) (bool, error) {
	return c.bans.IsBanned(ctx, ip)
}

// Release lifts a ban. Administrative action; there is no automatic expiry.
func (c *Controller) Release(ctx context.Context, ip string) error {
	if err := c.bans.Remove(ctx, ip); err != nil {
		return err
	}
	logger.Info("ip ban released", "ip", ip)
	return nil
}

// Bans returns all active bans.
func (c *Controller) Bans(ctx context.Context) ([]domain.IPBan, error) {
	return c.bans.List(ctx)
}
