package action_test

import (
	"context"
	"testing"

	"github.com/veyra-ai/veyra/internal/veyra/action"
	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

func TestDecide_NoPolicy(t *testing.T) {
	c := action.NewController(action.NewMemStore())
	d, err := c.Decide(context.Background(), "u1", "calendar", "create_event")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Execute || d.Mode != action.ModeAsk || d.Reason != "no policy" {
		t.Errorf("expected ask/no-policy decision, got %+v", d)
	}
}

func TestDecide_ModeNever(t *testing.T) {
	ctx := context.Background()
	c := action.NewController(action.NewMemStore())
	c.SetPolicy(ctx, action.Policy{UserID: "u1", Domain: "email", Action: "send", Mode: action.ModeNever, TrustScore: 0.99})

	d, err := c.Decide(ctx, "u1", "email", "send")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Execute {
		t.Errorf("expected mode=never to never execute regardless of trust")
	}
}

func TestDecide_ModeAuto(t *testing.T) {
	ctx := context.Background()
	c := action.NewController(action.NewMemStore())
	c.SetPolicy(ctx, action.Policy{UserID: "u1", Domain: "email", Action: "send", Mode: action.ModeAuto, TrustScore: 0})

	d, err := c.Decide(ctx, "u1", "email", "send")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.Execute {
		t.Errorf("expected mode=auto to always execute")
	}
}

func TestDecide_ModeDraft_ThresholdGated(t *testing.T) {
	ctx := context.Background()
	c := action.NewController(action.NewMemStore())

	c.SetPolicy(ctx, action.Policy{UserID: "u1", Domain: "email", Action: "send", Mode: action.ModeDraft, TrustScore: 0.5})
	low, _ := c.Decide(ctx, "u1", "email", "send")
	if low.Execute {
		t.Errorf("expected draft mode below threshold not to execute")
	}

	c.SetPolicy(ctx, action.Policy{UserID: "u1", Domain: "email", Action: "send", Mode: action.ModeDraft, TrustScore: 0.9})
	high, _ := c.Decide(ctx, "u1", "email", "send")
	if !high.Execute {
		t.Errorf("expected draft mode above threshold to execute")
	}
}

func TestDecide_ModeAsk(t *testing.T) {
	ctx := context.Background()
	c := action.NewController(action.NewMemStore())
	c.SetPolicy(ctx, action.Policy{UserID: "u1", Domain: "email", Action: "send", Mode: action.ModeAsk, TrustScore: 0.99})

	d, _ := c.Decide(ctx, "u1", "email", "send")
	if d.Execute {
		t.Errorf("expected mode=ask never to execute")
	}
}

func TestRecordOutcome_ClampsAndCreatesRow(t *testing.T) {
	ctx := context.Background()
	c := action.NewController(action.NewMemStore())

	for i := 0; i < 30; i++ {
		p, err := c.RecordOutcome(ctx, "u1", "email", "send", trust.OutcomeApproved)
		if err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
		if p.TrustScore > trust.GlobalCap {
			t.Fatalf("trust score exceeded global cap: %v", p.TrustScore)
		}
	}
}

func TestRecordOutcome_UnknownOutcome(t *testing.T) {
	c := action.NewController(action.NewMemStore())
	_, err := c.RecordOutcome(context.Background(), "u1", "email", "send", trust.Outcome("bogus"))
	if err == nil {
		t.Fatalf("expected an error for an unknown outcome")
	}
}
