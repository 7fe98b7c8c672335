// Package updatewatch polls an external release oracle for a newer build
// and, when auto-apply is enabled, drives the update through an injected
// applier with a bounded post-apply health check.
package updatewatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/veyra-ai/veyra/common/retry"
	"github.com/veyra-ai/veyra/internal/veyra/skill"
)

const (
	checkEveryBeats     = 6
	healthCheckAttempts = 6
	healthCheckSpacing  = 10 * time.Second
)

// Release describes one candidate build returned by a ReleaseOracle.
type Release struct {
	Version string
	Notes   string
	URL     string
}

// ReleaseOracle answers the single question updatewatch needs: what's the
// newest release currently published. The HTTP client (or any other
// transport) lives entirely behind this interface, left as an injected
// collaborator.
type ReleaseOracle interface {
	LatestRelease(ctx context.Context) (Release, error)
}

// Applier installs a release. It returns once the new build is running,
// before health has been validated — validation is updatewatch's job.
type Applier interface {
	Apply(ctx context.Context, release Release) error
}

// HealthChecker reports whether the running build is currently healthy.
// Used only for the post-apply validation retry.
type HealthChecker interface {
	Healthy(ctx context.Context) (bool, error)
}

// UpdateRecord is one append-only row of the update history.
type UpdateRecord struct {
	Timestamp    time.Time
	FromVersion  string
	ToVersion    string
	Result       string
	ErrorMessage string
}

// Update results, a closed set.
const (
	ResultApplied = "applied"
	ResultFailed  = "failed"
)

// HistoryStore appends update attempts to a durable, append-only log.
type HistoryStore interface {
	AppendHistory(ctx context.Context, record UpdateRecord) error
}

// PendingStore persists the most recently discovered-but-not-yet-applied
// release so it survives a process restart between the 6th-beat check that
// found it and the user's explicit apply_update intent.
type PendingStore interface {
	SavePending(ctx context.Context, release Release) error
	LoadPending(ctx context.Context) (Release, bool, error)
	ClearPending(ctx context.Context) error
}

// Config holds the (mostly optional) dependencies for Skill. Only Oracle
// and CurrentVersion are required; Applier/Health/History/Pending may be
// nil when the corresponding capability is not wired — auto-apply is then
// simply never attempted even if AutoApply is true.
type Config struct {
	Oracle  ReleaseOracle
	Applier Applier       // optional — enables auto-apply
	Health  HealthChecker // optional — enables post-apply validation
	History HistoryStore  // optional — enables the update_history audit trail
	Pending PendingStore  // optional — enables pending-release persistence across restarts

	CurrentVersion string
	AutoApply      bool
	OwnerUserID    string

	// Clock returns the current time; overridable in tests.
	Clock func() time.Time
}

// Skill implements skill.Skill over the update-oracle/applier pair.
type Skill struct {
	skill.BaseSkill
	cfg Config

	mu      sync.Mutex
	beat    int64
	pending *Release
}

// New builds a Skill from cfg.
func New(cfg Config) *Skill {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Skill{cfg: cfg}
}

func (s *Skill) Metadata() skill.Metadata {
	return skill.Metadata{
		Name:        "updatewatch",
		Description: "Watches for newer released builds and, when enabled, applies them automatically with a health-validated rollout.",
		Version:     "1.0.0",
		Permissions: skill.NewPermissionSet(skill.PermSendMessages),
		Intents:     []string{"apply_update"},
	}
}

// Initialize restores any pending release cached from a previous process.
func (s *Skill) Initialize(ctx context.Context) error {
	if s.cfg.Pending == nil {
		return nil
	}
	release, ok, err := s.cfg.Pending.LoadPending(ctx)
	if err != nil {
		return fmt.Errorf("updatewatch: load pending release: %w", err)
	}
	if ok {
		s.mu.Lock()
		s.pending = &release
		s.mu.Unlock()
	}
	return nil
}

// Handle answers the apply_update intent by installing the cached pending
// release, if any; every other intent falls through to BaseSkill's default.
func (s *Skill) Handle(ctx context.Context, req skill.Request) skill.Response {
	if req.Intent != "apply_update" {
		return s.BaseSkill.Handle(ctx, req)
	}

	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()

	if pending == nil {
		return skill.ErrorResponse(req, "no pending release")
	}
	if s.cfg.Applier == nil {
		return skill.ErrorResponse(req, "no applier configured")
	}
	if err := s.apply(ctx, *pending); err != nil {
		return skill.ErrorResponse(req, err.Error())
	}
	return skill.OKResponse(req, "update applied", map[string]any{"version": pending.Version})
}

// OnHeartbeat checks for a newer release every 6th beat. A found release
// that is newer than CurrentVersion is cached as pending; when auto-apply
// is enabled it is also applied immediately.
func (s *Skill) OnHeartbeat(ctx context.Context, userIDs []string) []skill.HeartbeatAction {
	s.mu.Lock()
	s.beat++
	beat := s.beat
	s.mu.Unlock()

	if beat%checkEveryBeats != 0 || s.cfg.Oracle == nil {
		return nil
	}

	release, err := s.cfg.Oracle.LatestRelease(ctx)
	if err != nil {
		return nil
	}

	newer, err := isNewer(release.Version, s.cfg.CurrentVersion)
	if err != nil || !newer {
		return nil
	}

	s.mu.Lock()
	s.pending = &release
	s.mu.Unlock()
	if s.cfg.Pending != nil {
		s.cfg.Pending.SavePending(ctx, release)
	}

	if !s.cfg.AutoApply || s.cfg.Applier == nil {
		return []skill.HeartbeatAction{s.notification(release, 7, "")}
	}

	if err := s.apply(ctx, release); err != nil {
		return []skill.HeartbeatAction{s.notification(release, 9, err.Error())}
	}
	return []skill.HeartbeatAction{s.notification(release, 8, "")}
}

// apply invokes the applier, validates health with a bounded retry, records
// the outcome to history, and clears the pending release on success.
func (s *Skill) apply(ctx context.Context, release Release) error {
	from := s.cfg.CurrentVersion

	if err := s.cfg.Applier.Apply(ctx, release); err != nil {
		s.recordHistory(ctx, from, release.Version, ResultFailed, err.Error())
		return err
	}

	if s.cfg.Health != nil {
		if err := s.validateHealth(ctx); err != nil {
			s.recordHistory(ctx, from, release.Version, ResultFailed, err.Error())
			return err
		}
	}

	s.recordHistory(ctx, from, release.Version, ResultApplied, "")
	s.cfg.CurrentVersion = release.Version

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	if s.cfg.Pending != nil {
		s.cfg.Pending.ClearPending(ctx)
	}
	return nil
}

// validateHealth retries the health check 6 times at a fixed 10s spacing —
// the only retry in this codebase that is not exponential backoff, per the
// spec's fixed-interval post-update validation requirement.
func (s *Skill) validateHealth(ctx context.Context) error {
	return retry.Do(ctx, retry.Config{
		MaxAttempts:  healthCheckAttempts,
		InitialDelay: healthCheckSpacing,
		MaxDelay:     healthCheckSpacing,
	}, func() error {
		ok, err := s.cfg.Health.Healthy(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("updatewatch: post-apply health check failed")
		}
		return nil
	})
}

func (s *Skill) recordHistory(ctx context.Context, from, to, result, errMsg string) {
	if s.cfg.History == nil {
		return
	}
	s.cfg.History.AppendHistory(ctx, UpdateRecord{
		Timestamp:    s.cfg.Clock(),
		FromVersion:  from,
		ToVersion:    to,
		Result:       result,
		ErrorMessage: errMsg,
	})
}

func (s *Skill) notification(release Release, priority int, errMsg string) skill.HeartbeatAction {
	data := map[string]any{"version": release.Version}
	if errMsg != "" {
		data["error"] = errMsg
	}
	return skill.HeartbeatAction{
		SkillName:  "updatewatch",
		ActionType: "send_message",
		UserID:     s.cfg.OwnerUserID,
		Priority:   priority,
		Data:       data,
	}
}

// isNewer reports whether candidate is a strictly greater semver than
// current.
func isNewer(candidate, current string) (bool, error) {
	c, err := semver.NewVersion(candidate)
	if err != nil {
		return false, fmt.Errorf("updatewatch: parse candidate version: %w", err)
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("updatewatch: parse current version: %w", err)
	}
	return c.GreaterThan(cur), nil
}
