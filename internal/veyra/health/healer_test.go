package health_test

import (
	"context"
	"testing"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/health"
)

type fakeRestarter struct {
	restarted bool
	name      string
	err       error
}

func (f *fakeRestarter) RestartFirstErrored(ctx context.Context) (bool, string, error) {
	return f.restarted, f.name, f.err
}

func newTestHealer(t *testing.T, cooldown time.Duration, clock func() time.Time) (*health.Healer, *health.MemAuditStore) {
	t.Helper()
	audit := health.NewMemAuditStore()
	h := health.NewHealer(true, cooldown, audit)
	h.Restarter = &fakeRestarter{restarted: true, name: "broken-skill"}
	if clock != nil {
		h.Clock = clock
	}
	return h, audit
}

func TestHealer_CooldownBlocksRepeat(t *testing.T) {
	// S5: cooldown 300s, call at t=0 then t=100s.
	now := time.Unix(0, 0)
	h, audit := newTestHealer(t, 300*time.Second, func() time.Time { return now })

	first := h.Execute(context.Background(), health.ActionRestartSkill, "anomaly")
	if !first {
		t.Fatalf("expected first call to execute")
	}

	now = now.Add(100 * time.Second)
	second := h.Execute(context.Background(), health.ActionRestartSkill, "anomaly")
	if second {
		t.Fatalf("expected second call within cooldown to be blocked")
	}

	rows := audit.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(rows))
	}
	if rows[0].Result != health.ResultSuccess {
		t.Errorf("expected first row success, got %s", rows[0].Result)
	}
	if rows[1].Result != health.ResultFailed || rows[1].Details["error"] != "cooldown" {
		t.Errorf("expected second row failed/cooldown, got %+v", rows[1])
	}
}

func TestHealer_DisabledNeverExecutes(t *testing.T) {
	audit := health.NewMemAuditStore()
	h := health.NewHealer(false, 0, audit)
	h.Restarter = &fakeRestarter{restarted: true}

	ok := h.Execute(context.Background(), health.ActionRestartSkill, "test")
	if ok {
		t.Fatalf("expected disabled healer never to execute")
	}
	rows := audit.Rows()
	if len(rows) != 1 || rows[0].Result != health.ResultSkipped {
		t.Fatalf("expected one skipped audit row, got %+v", rows)
	}
}

func TestHealer_UnconfiguredCollaboratorFails(t *testing.T) {
	audit := health.NewMemAuditStore()
	h := health.NewHealer(true, 0, audit)

	ok := h.Execute(context.Background(), health.ActionWarmLLMModels, "test")
	if !ok {
		t.Fatalf("expected Execute to report it attempted the action")
	}
	rows := audit.Rows()
	if rows[0].Result != health.ResultFailed {
		t.Errorf("expected failed result for unconfigured collaborator, got %s", rows[0].Result)
	}
}

func TestExecuteRecommended_UnknownActionDispatchesFalse(t *testing.T) {
	h, _ := newTestHealer(t, 0, nil)

	results := h.ExecuteRecommended(context.Background(), []string{health.ActionRestartSkill, "not_a_real_action"}, "test")
	if !results[health.ActionRestartSkill] {
		t.Errorf("expected restart_skill to execute")
	}
	if results["not_a_real_action"] {
		t.Errorf("expected unknown action to dispatch false")
	}
}

func TestHealer_AdjustRateLimitsCapsAt1800(t *testing.T) {
	audit := health.NewMemAuditStore()
	h := health.NewHealer(true, 0, audit)
	limiter := &fakeRateLimiter{interval: 1200}
	h.RateLimits = limiter

	ok := h.Execute(context.Background(), health.ActionAdjustRateLimits, "test")
	if !ok {
		t.Fatalf("expected execute to report attempted")
	}
	if limiter.interval != 1800 {
		t.Errorf("expected interval capped at 1800, got %d", limiter.interval)
	}

	limiter.interval = 10
	h2 := health.NewHealer(true, 0, health.NewMemAuditStore())
	h2.RateLimits = limiter
	h2.Execute(context.Background(), health.ActionAdjustRateLimits, "test")
	if limiter.interval != 20 {
		t.Errorf("expected interval doubled to 20, got %d", limiter.interval)
	}
}

type fakeRateLimiter struct {
	interval int
}

func (f *fakeRateLimiter) GetIntervalSeconds(ctx context.Context) (int, error) {
	return f.interval, nil
}

func (f *fakeRateLimiter) SetIntervalSeconds(ctx context.Context, seconds int) error {
	f.interval = seconds
	return nil
}
