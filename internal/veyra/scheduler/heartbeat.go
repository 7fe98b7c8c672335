// Package scheduler is the in-process ticker that drives the registry's
// heartbeat on an interval, realizing the spec's "external" heartbeat
// driver as a concrete component of this service rather than a separate
// process calling back over HTTP.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/skill"
)

// Beater is the one method the driver needs from a registry.
type Beater interface {
	RunHeartbeat(ctx context.Context, userIDs []string) []skill.HeartbeatAction
}

// IntervalSource optionally supplies a live interval, letting an operator's
// adjust_rate_limits healing action reshape the driver's cadence without a
// restart. When nil, Interval is used unconditionally.
type IntervalSource interface {
	GetIntervalSeconds(ctx context.Context) (int, error)
}

// Driver ticks RunHeartbeat on an interval until its context is cancelled.
type Driver struct {
	Registry Beater
	UserIDs  func() []string
	Interval time.Duration
	Source   IntervalSource // optional
	Logger   *slog.Logger
}

// NewDriver builds a Driver. interval defaults to 300s (§6's scheduler
// default) when zero.
func NewDriver(reg Beater, userIDs func() []string, interval time.Duration, source IntervalSource, logger *slog.Logger) *Driver {
	if interval == 0 {
		interval = 300 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if userIDs == nil {
		userIDs = func() []string { return nil }
	}
	return &Driver{Registry: reg, UserIDs: userIDs, Interval: interval, Source: source, Logger: logger}
}

// Run blocks, ticking at d.Interval (re-read from Source before every tick
// when configured) until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	interval := d.Interval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	d.Logger.Info("heartbeat driver starting", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			d.Logger.Info("heartbeat driver stopping")
			return
		case <-timer.C:
			actions := d.Registry.RunHeartbeat(ctx, d.UserIDs())
			d.Logger.Debug("heartbeat beat complete", "actions", len(actions))

			interval = d.nextInterval(ctx, interval)
			timer.Reset(interval)
		}
	}
}

func (d *Driver) nextInterval(ctx context.Context, current time.Duration) time.Duration {
	if d.Source == nil {
		return current
	}
	seconds, err := d.Source.GetIntervalSeconds(ctx)
	if err != nil {
		d.Logger.Warn("heartbeat driver: could not read interval setting, keeping current", "err", err)
		return current
	}
	return time.Duration(seconds) * time.Second
}
