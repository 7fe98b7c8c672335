// Package healthmon wires the health stack (collector, analyzer, healer)
// into a single skill.Skill driven by a beat counter.
package healthmon

import (
	"context"
	"sync"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/health"
	"github.com/veyra-ai/veyra/internal/veyra/skill"
)

const (
	analysisEveryBeats = 6
	reportEveryBeats   = 288
)

// Config holds the (mostly optional) dependencies for Skill. Only Collector
// is required; Healer and Snapshots may be nil when the corresponding
// capability is not wired (e.g. no self-healer configured).
type Config struct {
	Collector *health.Collector
	Healer    *health.Healer   // optional — enables automatic self-healing on recommended actions
	Snapshots health.SnapshotStore

	// OwnerUserID receives the critical-anomaly notification regardless of
	// which user IDs a given heartbeat call was fanned out for; a beat is a
	// system tick, not a per-user request, so the addressee is fixed at
	// wiring time rather than read from OnHeartbeat's argument.
	OwnerUserID string

	// Clock returns the current time; overridable in tests.
	Clock func() time.Time
}

// Skill implements skill.Skill over the health stack.
type Skill struct {
	skill.BaseSkill
	cfg Config

	mu   sync.Mutex
	beat int64
}

// New builds a Skill from cfg. Collector must be non-nil.
func New(cfg Config) *Skill {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Skill{cfg: cfg}
}

// Metadata describes the skill's static identity.
func (s *Skill) Metadata() skill.Metadata {
	return skill.Metadata{
		Name:        "healthmon",
		Description: "Collects system health snapshots, detects anomalies against a rolling baseline, and runs bounded self-healing actions.",
		Version:     "1.0.0",
		Permissions: skill.NewPermissionSet(skill.PermSendMessages),
		Intents:     []string{"health_status"},
	}
}

// Handle answers the health_status intent with the number of beats run so
// far; every other intent falls through to BaseSkill's default.
func (s *Skill) Handle(ctx context.Context, req skill.Request) skill.Response {
	if req.Intent != "health_status" {
		return s.BaseSkill.Handle(ctx, req)
	}
	s.mu.Lock()
	beat := s.beat
	s.mu.Unlock()
	return skill.OKResponse(req, "health monitor is running", map[string]any{"beats": beat})
}

// OnHeartbeat runs one beat of the collect/analyze/heal/report cadence:
// every beat collects and persists a snapshot; every 6th beat runs baseline
// analysis and, on critical anomaly or recommended action, reacts; every
// 288th beat computes and persists the daily report.
func (s *Skill) OnHeartbeat(ctx context.Context, userIDs []string) []skill.HeartbeatAction {
	s.mu.Lock()
	s.beat++
	beat := s.beat
	s.mu.Unlock()

	var actions []skill.HeartbeatAction

	snap, _ := s.cfg.Collector.Collect(ctx)
	if s.cfg.Snapshots != nil {
		s.cfg.Snapshots.SaveSnapshot(ctx, snap)
	}

	if beat%analysisEveryBeats == 0 {
		actions = append(actions, s.runAnalysis(ctx, snap)...)
	}

	if beat%reportEveryBeats == 0 {
		s.runDailyReport(ctx)
	}

	return actions
}

// runAnalysis fetches the last 24h of snapshots as a baseline, analyzes the
// current snapshot against it, and reacts to the verdict: a critical
// anomaly produces a send_message action to the owner, and any recommended
// action is handed to the healer (if configured).
func (s *Skill) runAnalysis(ctx context.Context, current health.Snapshot) []skill.HeartbeatAction {
	if s.cfg.Snapshots == nil {
		return nil
	}

	since := s.cfg.Clock().Add(-24 * time.Hour)
	baselineSnaps, err := s.cfg.Snapshots.SnapshotsSince(ctx, since)
	if err != nil {
		return nil
	}
	baseline := make([]map[string]any, len(baselineSnaps))
	for i, b := range baselineSnaps {
		baseline[i] = b.Metrics
	}

	result := health.AnalyzeSnapshot(current.Metrics, baseline)

	var actions []skill.HeartbeatAction
	if result.HasCritical && s.cfg.OwnerUserID != "" {
		actions = append(actions, skill.HeartbeatAction{
			SkillName:  "healthmon",
			ActionType: "send_message",
			UserID:     s.cfg.OwnerUserID,
			Priority:   9,
			Data: map[string]any{
				"anomalies": result.Anomalies,
			},
		})
	}

	if len(result.RecommendedActions) > 0 && s.cfg.Healer != nil {
		s.cfg.Healer.ExecuteRecommended(ctx, result.RecommendedActions, "healthmon_analysis")
	}

	return actions
}

// runDailyReport scores the last 24h of snapshots and persists the result.
func (s *Skill) runDailyReport(ctx context.Context) {
	if s.cfg.Snapshots == nil {
		return
	}
	now := s.cfg.Clock()
	since := now.Add(-24 * time.Hour)
	snaps, err := s.cfg.Snapshots.SnapshotsSince(ctx, since)
	if err != nil {
		return
	}
	report := health.GenerateDailyReport(now.Truncate(24*time.Hour), snaps)
	s.cfg.Snapshots.SaveDailyReport(ctx, report)
}
