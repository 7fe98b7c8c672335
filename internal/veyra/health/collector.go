package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Source pulls one category of the metrics tree. Each source is called
// independently and guarded individually — a failing or absent source never
// poisons the rest of the snapshot.
type Source interface {
	Collect(ctx context.Context) (map[string]any, error)
}

// Collector assembles a Snapshot from five independent sources. System is
// optional (e.g. backed by a platform-specific probe that may not be
// available); a nil System zero-fills that section and logs a warning
// instead of failing collection.
type Collector struct {
	Performance Source
	Reliability Source
	Usage       Source
	System      Source
	Skills      Source
	Logger      *slog.Logger
	now         func() time.Time
}

// NewCollector builds a Collector from its five sources. System may be nil.
func NewCollector(performance, reliability, usage, system, skills Source, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		Performance: performance,
		Reliability: reliability,
		Usage:       usage,
		System:      system,
		Skills:      skills,
		Logger:      logger,
		now:         time.Now,
	}
}

// Collect pulls every source into a single Metrics tree. Per-source failures
// degrade that section to an empty map and are returned as warnings; they
// never abort collection of the remaining sections.
func (c *Collector) Collect(ctx context.Context) (Snapshot, []string) {
	start := c.now()
	var warnings []string

	metrics := map[string]any{
		"performance": c.collectSection(ctx, c.Performance, "performance", &warnings),
		"reliability": c.collectSection(ctx, c.Reliability, "reliability", &warnings),
		"usage":       c.collectSection(ctx, c.Usage, "usage", &warnings),
		"system":      c.collectSection(ctx, c.System, "system", &warnings),
		"skills":      c.collectSection(ctx, c.Skills, "skills", &warnings),
	}

	collectedAt := c.now()
	collectionMs := float64(collectedAt.Sub(start).Microseconds()) / 1000.0
	metrics["collection_time_ms"] = collectionMs
	metrics["collected_at"] = collectedAt

	for _, w := range warnings {
		c.Logger.Warn("health collector: source degraded", "warning", w)
	}

	return Snapshot{
		Timestamp:        collectedAt,
		Metrics:          metrics,
		Anomalies:        map[string]Anomaly{},
		CollectionTimeMs: collectionMs,
	}, warnings
}

// collectSection calls src.Collect and converts either a returned error or a
// panic into a zero-filled section plus a warning. The recover must live
// here, not in Collect — Collect builds the metrics tree as one composite
// literal evaluating all five sections inline, so a panic escaping this
// function would unwind before that map exists, losing every section for
// the beat instead of just the one that panicked.
func (c *Collector) collectSection(ctx context.Context, src Source, label string, warnings *[]string) (result map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			*warnings = append(*warnings, fmt.Sprintf("%s: panic: %v", label, r))
			result = map[string]any{}
		}
	}()

	if src == nil {
		*warnings = append(*warnings, label+": source not configured")
		return map[string]any{}
	}
	data, err := src.Collect(ctx)
	if err != nil {
		*warnings = append(*warnings, label+": "+err.Error())
		return map[string]any{}
	}
	if data == nil {
		data = map[string]any{}
	}
	return data
}
