package registry_test

import (
	"context"
	"testing"

	"github.com/veyra-ai/veyra/internal/veyra/registry"
	"github.com/veyra-ai/veyra/internal/veyra/skill"
)

type countingSkill struct {
	skill.BaseSkill
	name    string
	intents []string
	calls   int
}

func (s *countingSkill) Metadata() skill.Metadata {
	return skill.Metadata{Name: s.name, Intents: s.intents}
}

func (s *countingSkill) Handle(ctx context.Context, req skill.Request) skill.Response {
	s.calls++
	return skill.OKResponse(req, "ok", nil)
}

func TestHandleRequest_IntentRoutingScenario(t *testing.T) {
	// S1: register A(create_task), B(list_events); dispatching create_task
	// calls A exactly once and never touches B.
	a := &countingSkill{name: "A", intents: []string{"create_task"}}
	b := &countingSkill{name: "B", intents: []string{"list_events"}}

	r := registry.New(0, nil)
	if err := r.Register(a); err != nil {
		t.Fatalf("register A: %v", err)
	}
	if err := r.Register(b); err != nil {
		t.Fatalf("register B: %v", err)
	}

	resp := r.HandleRequest(context.Background(), skill.Request{
		ID: "r1", UserID: "u1", Intent: "create_task", Message: "x", Context: map[string]any{},
	})

	if !resp.Success {
		t.Fatalf("expected success response, got %+v", resp)
	}
	if a.calls != 1 {
		t.Errorf("expected A.Handle called exactly once, got %d", a.calls)
	}
	if b.calls != 0 {
		t.Errorf("expected B.Handle never called, got %d", b.calls)
	}
}

func TestHandleRequest_UnknownIntent(t *testing.T) {
	r := registry.New(0, nil)
	resp := r.HandleRequest(context.Background(), skill.Request{ID: "r1", Intent: "nope"})
	if resp.Success {
		t.Fatalf("expected failure for unknown intent")
	}
	if resp.Error != "No skill found for intent" {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
}

func TestRegister_RejectsDuplicateNameAndIntent(t *testing.T) {
	r := registry.New(0, nil)
	a := &countingSkill{name: "A", intents: []string{"x"}}
	if err := r.Register(a); err != nil {
		t.Fatalf("register A: %v", err)
	}

	dup := &countingSkill{name: "A", intents: []string{"y"}}
	if err := r.Register(dup); err == nil {
		t.Errorf("expected duplicate name to be rejected")
	}

	clash := &countingSkill{name: "C", intents: []string{"x"}}
	if err := r.Register(clash); err == nil {
		t.Errorf("expected intent clash to be rejected")
	}
}

func TestInitializeAll_CollectsPerSkillResults(t *testing.T) {
	r := registry.New(0, nil)
	r.Register(&countingSkill{name: "ok", intents: nil})

	results := r.InitializeAll(context.Background())
	if !results["ok"] {
		t.Errorf("expected ok skill to initialize successfully")
	}
}

func TestGetStatusSummary_CountsByStatus(t *testing.T) {
	r := registry.New(0, nil)
	r.Register(&countingSkill{name: "a"})
	r.Register(&countingSkill{name: "b"})
	r.InitializeAll(context.Background())

	summary := r.GetStatusSummary()
	if summary.TotalSkills != 2 {
		t.Errorf("expected 2 total skills, got %d", summary.TotalSkills)
	}
	if summary.ReadyCount != 2 {
		t.Errorf("expected 2 ready skills, got %d", summary.ReadyCount)
	}
}

func TestRunHeartbeat_PreservesRegistrationOrder(t *testing.T) {
	first := &heartbeatSkill{name: "first", actions: []skill.HeartbeatAction{{SkillName: "first"}}}
	second := &heartbeatSkill{name: "second", actions: []skill.HeartbeatAction{{SkillName: "second"}}}

	r := registry.New(0, nil)
	r.Register(first)
	r.Register(second)
	r.InitializeAll(context.Background())

	actions := r.RunHeartbeat(context.Background(), []string{"u1"})
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %+v", actions)
	}
	if actions[0].SkillName != "first" || actions[1].SkillName != "second" {
		t.Errorf("expected registration order preserved, got %+v", actions)
	}
}

type heartbeatSkill struct {
	skill.BaseSkill
	name    string
	actions []skill.HeartbeatAction
}

func (s *heartbeatSkill) Metadata() skill.Metadata { return skill.Metadata{Name: s.name} }
func (s *heartbeatSkill) OnHeartbeat(ctx context.Context, userIDs []string) []skill.HeartbeatAction {
	return s.actions
}
