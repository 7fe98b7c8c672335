package health

import (
	"context"
	"time"
)

// SnapshotStore persists collected snapshots and daily reports. Declared
// here, next to Snapshot and DailyReport, even though its primary caller is
// the healthmon skill — the same "interface lives with the type it
// persists" idiom as AuditStore in healer.go.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error

	// SnapshotsSince returns every snapshot with timestamp >= since, ordered
	// oldest first.
	SnapshotsSince(ctx context.Context, since time.Time) ([]Snapshot, error)

	SaveDailyReport(ctx context.Context, report DailyReport) error
}
