package settings

import (
	"context"
	"errors"
	"strconv"
)

// defaultIntervalSeconds is the heartbeat driver's starting cadence (§6:
// "every scheduler.interval_seconds, default 300s") used when the setting
// has never been written.
const defaultIntervalSeconds = 300

// SchedulerAdjuster implements health.RateLimitAdjuster over the
// scheduler.interval_seconds setting, so the healer's adjust_rate_limits
// action persists through the same settings store every other tunable
// knob uses instead of a private in-memory value.
type SchedulerAdjuster struct {
	svc *Service
}

// NewSchedulerAdjuster wraps svc.
func NewSchedulerAdjuster(svc *Service) *SchedulerAdjuster {
	return &SchedulerAdjuster{svc: svc}
}

// GetIntervalSeconds reads scheduler.interval_seconds, defaulting to 300
// when it has not yet been set.
func (a *SchedulerAdjuster) GetIntervalSeconds(ctx context.Context) (int, error) {
	v, err := a.svc.Get(ctx, "scheduler", "interval_seconds")
	if errors.Is(err, ErrNotFound) {
		return defaultIntervalSeconds, nil
	}
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return defaultIntervalSeconds, nil
		}
		return parsed, nil
	default:
		return defaultIntervalSeconds, nil
	}
}

// SetIntervalSeconds persists a new scheduler.interval_seconds value.
func (a *SchedulerAdjuster) SetIntervalSeconds(ctx context.Context, seconds int) error {
	return a.svc.Put(ctx, Setting{
		Namespace: "scheduler",
		Key:       "interval_seconds",
		Value:     strconv.Itoa(seconds),
		DataType:  TypeInt,
	})
}
