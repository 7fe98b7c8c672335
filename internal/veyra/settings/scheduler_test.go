package settings_test

import (
	"context"
	"testing"

	"github.com/veyra-ai/veyra/internal/veyra/settings"
)

func TestSchedulerAdjuster_DefaultsWhenUnset(t *testing.T) {
	adj := settings.NewSchedulerAdjuster(settings.New(settings.NewMemStore()))

	got, err := adj.GetIntervalSeconds(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 300 {
		t.Errorf("expected default 300, got %d", got)
	}
}

func TestSchedulerAdjuster_SetThenGetRoundTrips(t *testing.T) {
	adj := settings.NewSchedulerAdjuster(settings.New(settings.NewMemStore()))
	ctx := context.Background()

	if err := adj.SetIntervalSeconds(ctx, 600); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := adj.GetIntervalSeconds(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 600 {
		t.Errorf("expected 600, got %d", got)
	}
}
