package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/action"
	"github.com/veyra-ai/veyra/internal/veyra/health"
	"github.com/veyra-ai/veyra/internal/veyra/rbac"
	"github.com/veyra-ai/veyra/internal/veyra/settings"
	"github.com/veyra-ai/veyra/internal/veyra/store"
	"github.com/veyra-ai/veyra/internal/veyra/skills/updatewatch"
	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "veyra-test-*.db")
	if err != nil {
		t.Fatalf("create temp db file: %v", err)
	}
	f.Close()

	s, err := store.New(f.Name())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrations_Idempotent(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "veyra-test-idempotent-*.db")
	if err != nil {
		t.Fatalf("create temp db: %v", err)
	}
	f.Close()

	s1, err := store.New(f.Name())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := store.New(f.Name())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}

func TestTrustStore_ApplyAndGetTypeOutcome(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetTypeTrust(ctx, "u1", trust.ReplyMeetingConfirm)
	if err != nil {
		t.Fatalf("GetTypeTrust: %v", err)
	}
	if got.Value != 0 || got.TotalInteractions != 0 {
		t.Errorf("expected zero-value score for unseen key, got %+v", got)
	}

	next, err := s.ApplyTypeOutcome(ctx, "u1", trust.ReplyMeetingConfirm, trust.OutcomeApproved)
	if err != nil {
		t.Fatalf("ApplyTypeOutcome: %v", err)
	}
	if next.Value != 0.05 {
		t.Errorf("expected value 0.05 after one approval, got %v", next.Value)
	}
	if next.TotalInteractions != 1 || next.Approvals != 1 {
		t.Errorf("expected counters incremented, got %+v", next)
	}

	again, err := s.ApplyTypeOutcome(ctx, "u1", trust.ReplyMeetingConfirm, trust.OutcomeApproved)
	if err != nil {
		t.Fatalf("ApplyTypeOutcome second call: %v", err)
	}
	if again.TotalInteractions != 2 {
		t.Errorf("expected accumulated counters across calls, got %+v", again)
	}

	persisted, err := s.GetTypeTrust(ctx, "u1", trust.ReplyMeetingConfirm)
	if err != nil {
		t.Fatalf("GetTypeTrust after update: %v", err)
	}
	if persisted != again {
		t.Errorf("expected read-after-write consistency, got %+v want %+v", persisted, again)
	}
}

func TestTrustStore_TypeTrustNeverExceedsCeiling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var last trust.Score
	for i := 0; i < 50; i++ {
		var err error
		last, err = s.ApplyTypeOutcome(ctx, "u1", trust.ReplySensitive, trust.OutcomeApproved)
		if err != nil {
			t.Fatalf("ApplyTypeOutcome iteration %d: %v", i, err)
		}
	}
	if last.Value > trust.Ceiling(trust.ReplySensitive) {
		t.Errorf("expected value capped at ceiling %v, got %v", trust.Ceiling(trust.ReplySensitive), last.Value)
	}
}

func TestTrustStore_ContactOutcomeIndependentOfType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ApplyContactOutcome(ctx, "u1", "alice@example.com", trust.OutcomeApproved); err != nil {
		t.Fatalf("ApplyContactOutcome: %v", err)
	}
	typeScore, err := s.GetTypeTrust(ctx, "u1", trust.ReplyGeneral)
	if err != nil {
		t.Fatalf("GetTypeTrust: %v", err)
	}
	if typeScore.TotalInteractions != 0 {
		t.Errorf("expected contact outcome to leave type ledger untouched, got %+v", typeScore)
	}
}

func TestActionStore_RecordOutcomeCreatesRowIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.RecordOutcome(ctx, "u1", "email", "send_reply", trust.OutcomeApproved)
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if p.Mode != action.ModeAsk {
		t.Errorf("expected newly-created row to default to ask mode, got %q", p.Mode)
	}
	if p.TrustScore != 0.05 {
		t.Errorf("expected trust score 0.05, got %v", p.TrustScore)
	}

	got, ok, err := s.GetPolicy(ctx, "u1", "email", "send_reply")
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if !ok {
		t.Fatalf("expected policy row to exist after RecordOutcome")
	}
	if got.TrustScore != 0.05 {
		t.Errorf("expected persisted trust score 0.05, got %v", got.TrustScore)
	}
}

func TestActionStore_PutPolicyThenEvaluate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutPolicy(ctx, action.Policy{UserID: "u1", Domain: "calendar", Action: "create_event", Mode: action.ModeAuto, TrustScore: 0.4}); err != nil {
		t.Fatalf("PutPolicy: %v", err)
	}
	p, ok, err := s.GetPolicy(ctx, "u1", "calendar", "create_event")
	if err != nil || !ok {
		t.Fatalf("GetPolicy: ok=%v err=%v", ok, err)
	}
	d := action.Evaluate(p)
	if !d.Execute {
		t.Errorf("expected auto mode to execute regardless of trust, got %+v", d)
	}
}

func TestHealthStore_SnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	snap := health.Snapshot{
		Timestamp:        now,
		Metrics:          map[string]any{"performance": map[string]any{"latency_ms": 42.0}},
		CollectionTimeMs: 3.2,
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := s.SnapshotsSince(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(got))
	}

	tooLate, err := s.SnapshotsSince(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("SnapshotsSince future: %v", err)
	}
	if len(tooLate) != 0 {
		t.Errorf("expected no snapshots after the cutoff, got %d", len(tooLate))
	}
}

func TestHealthStore_DailyReportUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	r1 := health.DailyReport{Date: date, Score: 88.5, Deductions: map[string]float64{"rate_limit": 5}, SnapshotCount: 10}
	if err := s.SaveDailyReport(ctx, r1); err != nil {
		t.Fatalf("SaveDailyReport: %v", err)
	}

	r2 := health.DailyReport{Date: date, Score: 70.0, Deductions: map[string]float64{"rate_limit": 20}, SnapshotCount: 288}
	if err := s.SaveDailyReport(ctx, r2); err != nil {
		t.Fatalf("SaveDailyReport overwrite: %v", err)
	}

	var score float64
	var count int
	row := s.DB().QueryRowContext(ctx, "SELECT score, snapshot_count FROM daily_reports WHERE date = ?", date.Format("2006-01-02"))
	if err := row.Scan(&score, &count); err != nil {
		t.Fatalf("query daily_reports: %v", err)
	}
	if score != 70.0 || count != 288 {
		t.Errorf("expected the second write to win (one row per date), got score=%v count=%v", score, count)
	}
}

func TestHealthStore_AuditCooldown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.LastRun(ctx, health.ActionRestartSkill); err != nil || ok {
		t.Fatalf("expected no prior run, ok=%v err=%v", ok, err)
	}

	healAction := health.HealingAction{
		Timestamp:  time.Now(),
		ActionType: health.ActionRestartSkill,
		Trigger:    "manual",
		Result:     health.ResultSuccess,
		Details:    map[string]any{"skill": "healthmon"},
	}
	if err := s.Record(ctx, healAction); err != nil {
		t.Fatalf("Record: %v", err)
	}

	ts, ok, err := s.LastRun(ctx, health.ActionRestartSkill)
	if err != nil || !ok {
		t.Fatalf("expected a recorded run, ok=%v err=%v", ok, err)
	}
	if ts.IsZero() {
		t.Error("expected a non-zero last-run timestamp")
	}
}

func TestHealthStore_AuditIgnoresFailedRunsForCooldown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	failed := health.HealingAction{
		Timestamp:  time.Now(),
		ActionType: health.ActionVacuumDatabases,
		Trigger:    "manual",
		Result:     health.ResultFailed,
		Details:    map[string]any{"error": "disk full"},
	}
	if err := s.Record(ctx, failed); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, ok, err := s.LastRun(ctx, health.ActionVacuumDatabases); err != nil || ok {
		t.Fatalf("expected failed runs not to count toward cooldown, ok=%v err=%v", ok, err)
	}
}

func TestRBACStore_UserRoundTripAndAudit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := rbac.User{ID: "u1", ContactID: "@alice:example.com", Role: rbac.RoleAdmin}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, ok, err := s.GetUser(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("GetUser: ok=%v err=%v", ok, err)
	}
	if got.Role != rbac.RoleAdmin || got.ContactID != "@alice:example.com" {
		t.Errorf("unexpected user: %+v", got)
	}

	if err := s.SetRole(ctx, "u1", rbac.RoleUser); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, _, _ = s.GetUser(ctx, "u1")
	if got.Role != rbac.RoleUser {
		t.Errorf("expected role updated to user, got %q", got.Role)
	}

	if err := s.AppendAudit(ctx, rbac.AuditRecord{Action: "set_role", Target: "u1", PerformedBy: "owner1", OldRole: rbac.RoleAdmin, NewRole: rbac.RoleUser}); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}

	var count int
	if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log WHERE target = ?", "u1").Scan(&count); err != nil {
		t.Fatalf("count audit_log: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 audit row, got %d", count)
	}

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, ok, _ := s.GetUser(ctx, "u1"); ok {
		t.Error("expected user to be gone after delete")
	}
}

func TestRBACStore_ListUsersOrdersByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.CreateUser(ctx, rbac.User{ID: id, ContactID: id + "@example.com", Role: rbac.RoleUser}); err != nil {
			t.Fatalf("CreateUser(%s): %v", id, err)
		}
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for i, want := range []string{"a", "b", "c"} {
		if users[i].ID != want {
			t.Errorf("expected creation order at position %d: want %q, got %q", i, want, users[i].ID)
		}
	}
}

func TestSettingsStore_PutGetDeleteRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	setting := settings.Setting{Namespace: "tuning", Key: "temperature", Value: "0.7", DataType: settings.TypeFloat}
	if err := s.Put(ctx, setting); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "tuning", "temperature")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Value != "0.7" || got.DataType != settings.TypeFloat {
		t.Errorf("unexpected setting: %+v", got)
	}

	if err := s.Delete(ctx, "tuning", "temperature"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "tuning", "temperature"); err != settings.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSettingsStore_ListScopesToNamespace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, settings.Setting{Namespace: "models", Key: "default", Value: "gpt", DataType: settings.TypeString})
	s.Put(ctx, settings.Setting{Namespace: "budgets", Key: "monthly_usd", Value: "50", DataType: settings.TypeInt})

	got, err := s.List(ctx, "models")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Key != "default" {
		t.Errorf("expected only the models-namespace setting, got %+v", got)
	}
}

func TestUpdateStore_PendingReleaseRoundTripAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.LoadPending(ctx); err != nil || ok {
		t.Fatalf("expected no pending release initially, got ok=%v err=%v", ok, err)
	}

	release := updatewatch.Release{Version: "1.2.0", Notes: "bugfixes", URL: "https://example.com/1.2.0"}
	if err := s.SavePending(ctx, release); err != nil {
		t.Fatalf("SavePending: %v", err)
	}

	got, ok, err := s.LoadPending(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadPending: ok=%v err=%v", ok, err)
	}
	if got != release {
		t.Errorf("expected %+v, got %+v", release, got)
	}

	// Saving again must replace, not duplicate, the single cached row.
	release2 := updatewatch.Release{Version: "1.3.0"}
	if err := s.SavePending(ctx, release2); err != nil {
		t.Fatalf("SavePending (replace): %v", err)
	}
	got2, _, err := s.LoadPending(ctx)
	if err != nil || got2.Version != "1.3.0" {
		t.Fatalf("expected replaced pending release, got %+v err=%v", got2, err)
	}

	if err := s.ClearPending(ctx); err != nil {
		t.Fatalf("ClearPending: %v", err)
	}
	if _, ok, err := s.LoadPending(ctx); err != nil || ok {
		t.Fatalf("expected no pending release after clear, got ok=%v err=%v", ok, err)
	}
}

func TestUpdateStore_HistoryIsAppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AppendHistory(ctx, updatewatch.UpdateRecord{
		Timestamp: time.Now(), FromVersion: "1.0.0", ToVersion: "1.1.0", Result: updatewatch.ResultApplied,
	}); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if err := s.AppendHistory(ctx, updatewatch.UpdateRecord{
		Timestamp: time.Now(), FromVersion: "1.1.0", ToVersion: "1.2.0",
		Result: updatewatch.ResultFailed, ErrorMessage: "health check failed",
	}); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	var count int
	if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM update_history").Scan(&count); err != nil {
		t.Fatalf("count update_history: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 append-only rows, got %d", count)
	}
}
