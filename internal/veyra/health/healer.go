package health

import (
	"context"
	"errors"
	"time"
)

// defaultCooldown is the interval (§4.H) during which a repeated action-type
// is blocked after it last ran.
const defaultCooldown = 300 * time.Second

// rateLimitCap is the ceiling (seconds) the scheduler interval is never
// doubled past.
const rateLimitCap = 1800

// Action names, a closed catalogue.
const (
	ActionRestartSkill          = "restart_skill"
	ActionClearStaleConnections = "clear_stale_connections"
	ActionVacuumDatabases       = "vacuum_databases"
	ActionWarmLLMModels         = "warm_llm_models"
	ActionAdjustRateLimits      = "adjust_rate_limits"
	ActionFlushLogBuffer        = "flush_log_buffer"
)

// SkillRestarter restarts the first skill observed in an error state.
type SkillRestarter interface {
	RestartFirstErrored(ctx context.Context) (restarted bool, name string, err error)
}

// ConnectionPool expires stale connections.
type ConnectionPool interface {
	ExpireAll(ctx context.Context) (count int, err error)
}

// DatabaseCompactor compacts/analyzes designated storage tables.
type DatabaseCompactor interface {
	Vacuum(ctx context.Context) error
}

// ModelWarmer sends a minimal keep-alive request to every loaded model.
type ModelWarmer interface {
	WarmAll(ctx context.Context) (count int, err error)
}

// RateLimitAdjuster reads and writes the scheduler's poll interval.
type RateLimitAdjuster interface {
	GetIntervalSeconds(ctx context.Context) (int, error)
	SetIntervalSeconds(ctx context.Context, seconds int) error
}

// LogFlusher force-flushes every registered log sink.
type LogFlusher interface {
	FlushAll(ctx context.Context) (count int, err error)
}

// AuditStore persists HealingAction rows and answers cooldown queries.
type AuditStore interface {
	Record(ctx context.Context, action HealingAction) error
	LastRun(ctx context.Context, actionType string) (t time.Time, ok bool, err error)
}

// Healer runs the fixed self-healing catalogue, in-process only: none of
// its actions ever spawn a subprocess or restart a container.
type Healer struct {
	Enabled  bool
	Cooldown time.Duration

	Restarter   SkillRestarter
	Connections ConnectionPool
	Compactor   DatabaseCompactor
	Warmer      ModelWarmer
	RateLimits  RateLimitAdjuster
	Flusher     LogFlusher
	Audit       AuditStore

	// Clock returns the current time; overridable in tests.
	Clock func() time.Time
}

// NewHealer builds a Healer. Pass 0 for cooldown to use the spec default of
// 300s. Any collaborator may be nil; the corresponding action then fails
// with "not configured" instead of panicking.
func NewHealer(enabled bool, cooldown time.Duration, audit AuditStore) *Healer {
	if cooldown == 0 {
		cooldown = defaultCooldown
	}
	return &Healer{Enabled: enabled, Cooldown: cooldown, Audit: audit, Clock: time.Now}
}

// Execute runs actionType if enabled and not within cooldown, recording an
// audit row in every case. The returned bool reports whether the action was
// actually attempted (true) or was blocked by the disabled flag or an active
// cooldown (false) — it does not reflect the attempted action's own
// internal success/failure, which is instead captured by the audit row.
func (h *Healer) Execute(ctx context.Context, actionType, trigger string) bool {
	if !h.Enabled {
		h.audit(ctx, actionType, trigger, ResultSkipped, map[string]any{"error": "disabled"})
		return false
	}

	if last, ok, err := h.Audit.LastRun(ctx, actionType); err == nil && ok {
		if h.Clock().Sub(last) < h.Cooldown {
			h.audit(ctx, actionType, trigger, ResultFailed, map[string]any{"error": "cooldown"})
			return false
		}
	}

	details, err := h.perform(ctx, actionType)
	result := ResultSuccess
	if err != nil {
		result = ResultFailed
		if details == nil {
			details = map[string]any{}
		}
		details["error"] = err.Error()
	}
	h.audit(ctx, actionType, trigger, result, details)
	return true
}

// ExecuteRecommended runs every action in actions, in the order given,
// dispatching unknown action names to false without consulting the audit
// store.
func (h *Healer) ExecuteRecommended(ctx context.Context, actions []string, trigger string) map[string]bool {
	out := make(map[string]bool, len(actions))
	for _, name := range actions {
		if !isKnownAction(name) {
			out[name] = false
			continue
		}
		out[name] = h.Execute(ctx, name, trigger)
	}
	return out
}

func isKnownAction(name string) bool {
	switch name {
	case ActionRestartSkill, ActionClearStaleConnections, ActionVacuumDatabases,
		ActionWarmLLMModels, ActionAdjustRateLimits, ActionFlushLogBuffer:
		return true
	default:
		return false
	}
}

func (h *Healer) perform(ctx context.Context, actionType string) (map[string]any, error) {
	switch actionType {
	case ActionRestartSkill:
		if h.Restarter == nil {
			return nil, errors.New("not configured")
		}
		restarted, name, err := h.Restarter.RestartFirstErrored(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"restarted": restarted, "skill": name}, nil

	case ActionClearStaleConnections:
		if h.Connections == nil {
			return nil, errors.New("not configured")
		}
		count, err := h.Connections.ExpireAll(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"expired": count}, nil

	case ActionVacuumDatabases:
		if h.Compactor == nil {
			return nil, errors.New("not configured")
		}
		if err := h.Compactor.Vacuum(ctx); err != nil {
			return nil, err
		}
		return map[string]any{}, nil

	case ActionWarmLLMModels:
		if h.Warmer == nil {
			return nil, errors.New("not configured")
		}
		count, err := h.Warmer.WarmAll(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"warmed": count}, nil

	case ActionAdjustRateLimits:
		if h.RateLimits == nil {
			return nil, errors.New("not configured")
		}
		cur, err := h.RateLimits.GetIntervalSeconds(ctx)
		if err != nil {
			return nil, err
		}
		next := cur * 2
		if next > rateLimitCap {
			next = rateLimitCap
		}
		if err := h.RateLimits.SetIntervalSeconds(ctx, next); err != nil {
			return nil, err
		}
		return map[string]any{"previous_interval_seconds": cur, "new_interval_seconds": next}, nil

	case ActionFlushLogBuffer:
		if h.Flusher == nil {
			return nil, errors.New("not configured")
		}
		count, err := h.Flusher.FlushAll(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"flushed": count}, nil

	default:
		return nil, errors.New("unknown action")
	}
}

func (h *Healer) audit(ctx context.Context, actionType, trigger string, result Result, details map[string]any) {
	if h.Audit == nil {
		return
	}
	h.Audit.Record(ctx, HealingAction{
		Timestamp:  h.Clock(),
		ActionType: actionType,
		Trigger:    trigger,
		Result:     result,
		Details:    details,
	})
}
