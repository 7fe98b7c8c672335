// Package app assembles every subsystem — persistence, trust, action
// control, health monitoring, the skill registry, RBAC, settings, the
// heartbeat driver, and the HTTP server — into one runnable process.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/action"
	"github.com/veyra-ai/veyra/internal/veyra/health"
	"github.com/veyra-ai/veyra/internal/veyra/rbac"
	"github.com/veyra-ai/veyra/internal/veyra/registry"
	"github.com/veyra-ai/veyra/internal/veyra/scheduler"
	"github.com/veyra-ai/veyra/internal/veyra/server"
	"github.com/veyra-ai/veyra/internal/veyra/settings"
	"github.com/veyra-ai/veyra/internal/veyra/skills/healthmon"
	"github.com/veyra-ai/veyra/internal/veyra/skills/updatewatch"
	"github.com/veyra-ai/veyra/internal/veyra/store"
	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

// Config holds every tunable needed to assemble an App. Only DatabasePath
// is strictly required; everything else has a documented default or
// degrades gracefully when left zero-valued, matching the optional-
// collaborator pattern used throughout the subsystems it wires.
type Config struct {
	DatabasePath string
	HTTPAddr     string // empty disables the skills HTTP server
	APISecret    string

	HeartbeatInterval time.Duration // defaults to 300s
	OwnerUserID       string        // recipient of critical health/update notifications

	HealerEnabled  bool
	HealerCooldown time.Duration // defaults to 300s

	CurrentVersion    string
	AutoApplyUpdates  bool
	UpdateOracle      updatewatch.ReleaseOracle // optional external collaborator
	UpdateApplier     updatewatch.Applier       // optional external collaborator

	LogLevel  string // debug|info|warn|error
	LogFormat string // text|json

	// Clock returns the current time; overridable in tests.
	Clock func() time.Time
}

// App is the assembled control plane.
type App struct {
	cfg Config

	store    *store.Store
	registry *registry.Registry
	rbacSvc  *rbac.Service
	settings *settings.Service
	trust    *trust.Ledger
	action   *action.Controller
	healer   *health.Healer
	metrics  *health.PrometheusSource

	httpServer *server.Server
	driver     *scheduler.Driver
}

// New wires every subsystem from cfg. It does not start anything — call
// Run to begin serving and ticking the heartbeat.
func New(cfg Config) (*App, error) {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	trustLedger := trust.NewLedger(db)
	actionController := action.NewController(db)
	settingsSvc := settings.New(db)
	rbacSvc := rbac.New(db)

	metrics := health.NewPrometheusSource()
	collector := health.NewCollector(metrics, nil, nil, nil, nil, slog.Default())

	reg := registry.New(0, slog.Default())

	healer := health.NewHealer(cfg.HealerEnabled, cfg.HealerCooldown, db)
	healer.Restarter = reg
	healer.Compactor = db
	healer.RateLimits = settings.NewSchedulerAdjuster(settingsSvc)

	healthSkill := healthmon.New(healthmon.Config{
		Collector:   collector,
		Healer:      healer,
		Snapshots:   db,
		OwnerUserID: cfg.OwnerUserID,
		Clock:       cfg.Clock,
	})
	if err := reg.Register(healthSkill); err != nil {
		db.Close()
		return nil, fmt.Errorf("app: register healthmon: %w", err)
	}

	if cfg.UpdateOracle != nil {
		updateSkill := updatewatch.New(updatewatch.Config{
			Oracle:         cfg.UpdateOracle,
			Applier:        cfg.UpdateApplier,
			Health:         &registryHealthChecker{reg: reg},
			History:        db,
			Pending:        db,
			CurrentVersion: cfg.CurrentVersion,
			AutoApply:      cfg.AutoApplyUpdates,
			OwnerUserID:    cfg.OwnerUserID,
			Clock:          cfg.Clock,
		})
		if err := reg.Register(updateSkill); err != nil {
			db.Close()
			return nil, fmt.Errorf("app: register updatewatch: %w", err)
		}
	}

	httpServer := server.New(server.Config{
		Addr:      cfg.HTTPAddr,
		APISecret: cfg.APISecret,
		Registry:  reg,
		RBAC:      rbacSvc,
		Settings:  settingsSvc,
		Metrics:   metrics,
		Logger:    slog.Default(),
	})

	driver := scheduler.NewDriver(reg, nil, cfg.HeartbeatInterval,
		settings.NewSchedulerAdjuster(settingsSvc), slog.Default())

	return &App{
		cfg:        cfg,
		store:      db,
		registry:   reg,
		rbacSvc:    rbacSvc,
		settings:   settingsSvc,
		trust:      trustLedger,
		action:     actionController,
		healer:     healer,
		metrics:    metrics,
		httpServer: httpServer,
		driver:     driver,
	}, nil
}

// Run initializes every registered skill, starts the HTTP server (when
// configured), and starts the heartbeat driver — all in the background —
// then blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.registry.InitializeAll(ctx)

	if a.cfg.HTTPAddr != "" {
		if err := a.httpServer.Start(ctx); err != nil {
			return fmt.Errorf("app: start http server: %w", err)
		}
	}

	go a.driver.Run(ctx)

	<-ctx.Done()
	return nil
}

// Stop stops the HTTP server (when one is configured) and releases the
// database connection. The heartbeat driver shuts itself down when the
// context passed to Run is cancelled.
func (a *App) Stop() {
	if a.cfg.HTTPAddr != "" {
		a.httpServer.Stop()
	}
	a.store.Close()
}

// Registry exposes the assembled registry for callers (e.g. cmd/veyra)
// that need to register additional leaf skills before calling Run.
func (a *App) Registry() *registry.Registry { return a.registry }

// Trust exposes the trust ledger for leaf skills wired in after New.
func (a *App) Trust() *trust.Ledger { return a.trust }

// Action exposes the action controller for leaf skills wired in after New.
func (a *App) Action() *action.Controller { return a.action }

// RBAC exposes the RBAC service.
func (a *App) RBAC() *rbac.Service { return a.rbacSvc }

// Settings exposes the settings service.
func (a *App) Settings() *settings.Service { return a.settings }

// registryHealthChecker implements updatewatch.HealthChecker over the
// registry's own status summary: the running build is healthy exactly when
// no registered skill is in the error state.
type registryHealthChecker struct {
	reg *registry.Registry
}

func (c *registryHealthChecker) Healthy(ctx context.Context) (bool, error) {
	summary := c.reg.GetStatusSummary()
	return summary.ErrorCount == 0, nil
}
