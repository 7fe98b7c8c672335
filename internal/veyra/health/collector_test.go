package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/veyra-ai/veyra/internal/veyra/health"
)

type fakeSource struct {
	data  map[string]any
	err   error
	panic any // when non-nil, Collect panics with this value instead of returning
}

func (f *fakeSource) Collect(ctx context.Context) (map[string]any, error) {
	if f.panic != nil {
		panic(f.panic)
	}
	return f.data, f.err
}

func TestCollector_DegradesFailingSource(t *testing.T) {
	c := health.NewCollector(
		&fakeSource{err: errors.New("boom")},
		&fakeSource{data: map[string]any{"uptime_seconds": 10.0}},
		&fakeSource{data: map[string]any{}},
		nil,
		&fakeSource{data: map[string]any{}},
		nil,
	)

	snap, warnings := c.Collect(context.Background())

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings (failing performance source + nil system source), got %v", warnings)
	}
	performance, ok := snap.Metrics["performance"].(map[string]any)
	if !ok || len(performance) != 0 {
		t.Errorf("expected performance section to be zero-filled, got %v", snap.Metrics["performance"])
	}
	reliability, ok := snap.Metrics["reliability"].(map[string]any)
	if !ok || reliability["uptime_seconds"] != 10.0 {
		t.Errorf("expected reliability section to survive, got %v", snap.Metrics["reliability"])
	}
	system, ok := snap.Metrics["system"].(map[string]any)
	if !ok || len(system) != 0 {
		t.Errorf("expected system section to be zero-filled when source is nil, got %v", snap.Metrics["system"])
	}
}

func TestCollector_RecoversPanickingSourceWithoutLosingOtherSections(t *testing.T) {
	c := health.NewCollector(
		&fakeSource{panic: "boom"},
		&fakeSource{data: map[string]any{"uptime_seconds": 10.0}},
		&fakeSource{data: map[string]any{}},
		nil,
		&fakeSource{data: map[string]any{}},
		nil,
	)

	snap, warnings := c.Collect(context.Background())

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings (panicking performance source + nil system source), got %v", warnings)
	}
	performance, ok := snap.Metrics["performance"].(map[string]any)
	if !ok || len(performance) != 0 {
		t.Errorf("expected performance section to be zero-filled after a panic, got %v", snap.Metrics["performance"])
	}
	reliability, ok := snap.Metrics["reliability"].(map[string]any)
	if !ok || reliability["uptime_seconds"] != 10.0 {
		t.Errorf("expected reliability section to survive a sibling source's panic, got %v", snap.Metrics["reliability"])
	}
}

func TestCollector_AllSourcesSucceed(t *testing.T) {
	c := health.NewCollector(
		&fakeSource{data: map[string]any{"total_requests": 5.0}},
		&fakeSource{data: map[string]any{}},
		&fakeSource{data: map[string]any{}},
		&fakeSource{data: map[string]any{"memory_rss_mb": 200.0}},
		&fakeSource{data: map[string]any{}},
		nil,
	)

	snap, warnings := c.Collect(context.Background())
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if _, ok := snap.Metrics["collection_time_ms"]; !ok {
		t.Errorf("expected collection_time_ms to be set")
	}
	if _, ok := snap.Metrics["collected_at"]; !ok {
		t.Errorf("expected collected_at to be set")
	}
}
