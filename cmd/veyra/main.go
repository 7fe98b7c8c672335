// Veyra is the capability & control plane binary: the skill registry,
// periodic health monitor, trust/action control, and skills HTTP server,
// all wired from environment variables.
//
// Environment variables (all optional):
//
//	VEYRA_DB_PATH             - path to the SQLite database (default: ./veyra.db)
//	VEYRA_HTTP_ADDR           - skills HTTP server listen address (default: ":8090")
//	VEYRA_API_SECRET          - shared secret checked via X-API-Secret (empty disables auth)
//	VEYRA_OWNER_USER_ID       - recipient of critical health/update notifications
//	VEYRA_HEARTBEAT_INTERVAL  - heartbeat driver interval (default: "300s")
//	VEYRA_HEALER_ENABLED      - enable the self-healing catalogue (default: false)
//	VEYRA_HEALER_COOLDOWN     - per-action cooldown (default: "300s")
//	VEYRA_CURRENT_VERSION     - this build's version, compared against the update oracle
//	VEYRA_AUTO_APPLY_UPDATES  - apply newer releases automatically (default: false)
//	VEYRA_UPDATE_SOURCE_URL   - base URL of the external update-manager (empty disables updatewatch)
//	VEYRA_UPDATE_SOURCE_TOKEN - bearer token for the update-manager
//	LOG_LEVEL                 - "debug", "info", "warn", "error" (default: "info")
//	LOG_FORMAT                - "text" or "json" (default: "text")
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/veyra-ai/veyra/common/environment"
	"github.com/veyra-ai/veyra/common/observability"
	"github.com/veyra-ai/veyra/common/version"
	"github.com/veyra-ai/veyra/internal/veyra/app"
	"github.com/veyra-ai/veyra/internal/veyra/updatesource"
)

func main() {
	fmt.Printf("Veyra Capability & Control Plane\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	observability.Setup(
		environment.StringOr("LOG_LEVEL", "info"),
		environment.StringOr("LOG_FORMAT", "text"),
	)

	cfg := loadConfig()

	veyra, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize veyra", "err", err)
		os.Exit(1)
	}
	defer veyra.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("veyra is running", "http_addr", cfg.HTTPAddr)
	if err := veyra.Run(ctx); err != nil {
		slog.Error("veyra exited with error", "err", err)
		os.Exit(1)
	}
}

func loadConfig() app.Config {
	cfg := app.Config{
		DatabasePath:      environment.StringOr("VEYRA_DB_PATH", "./veyra.db"),
		HTTPAddr:          environment.StringOr("VEYRA_HTTP_ADDR", ":8090"),
		APISecret:         environment.StringOr("VEYRA_API_SECRET", ""),
		OwnerUserID:       environment.StringOr("VEYRA_OWNER_USER_ID", ""),
		HeartbeatInterval: environment.DurationOr("VEYRA_HEARTBEAT_INTERVAL", 0),
		HealerEnabled:     environment.BoolOr("VEYRA_HEALER_ENABLED", false),
		HealerCooldown:    environment.DurationOr("VEYRA_HEALER_COOLDOWN", 0),
		CurrentVersion:    environment.StringOr("VEYRA_CURRENT_VERSION", version.Version),
		AutoApplyUpdates:  environment.BoolOr("VEYRA_AUTO_APPLY_UPDATES", false),
	}

	if updateURL, ok := environment.String("VEYRA_UPDATE_SOURCE_URL"); ok && updateURL != "" {
		token := environment.StringOr("VEYRA_UPDATE_SOURCE_TOKEN", "")
		client := updatesource.New(updateURL, token)
		cfg.UpdateOracle = client
		cfg.UpdateApplier = client
		slog.Info("update source configured", "url", updateURL)
	}

	return cfg
}
