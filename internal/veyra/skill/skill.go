package skill

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Skill is the capability set every pluggable skill implements. Concrete
// skills embed BaseSkill and override only the methods they need — the
// unset ones inherit safe no-op defaults.
type Skill interface {
	Metadata() Metadata
	Initialize(ctx context.Context) error
	Handle(ctx context.Context, req Request) Response
	OnHeartbeat(ctx context.Context, userIDs []string) []HeartbeatAction
	PromptFragment(ctx context.Context, userID string) string
	Cleanup(ctx context.Context) error
}

// BaseSkill is an embeddable no-op adapter. Concrete skills embed it by
// value and override Handle, OnHeartbeat, and PromptFragment as needed;
// Initialize/Cleanup default to no-ops that succeed immediately.
type BaseSkill struct{}

func (BaseSkill) Initialize(ctx context.Context) error { return nil }

func (BaseSkill) Handle(ctx context.Context, req Request) Response {
	return Response{RequestID: req.ID, Success: false, Message: "Unknown intent", Error: "Unknown intent"}
}

func (BaseSkill) OnHeartbeat(ctx context.Context, userIDs []string) []HeartbeatAction { return nil }

func (BaseSkill) PromptFragment(ctx context.Context, userID string) string { return "" }

func (BaseSkill) Cleanup(ctx context.Context) error { return nil }

// StatusHolder tracks a skill's lifecycle state with single-writer,
// many-reader semantics: the framework is the sole writer (on behalf of one
// specific skill), and readers may observe a stale value for the duration of
// one dispatch without any correctness impact.
type StatusHolder struct {
	v atomic.Value
}

// NewStatusHolder returns a StatusHolder initialized to StatusInitializing.
func NewStatusHolder() *StatusHolder {
	h := &StatusHolder{}
	h.v.Store(StatusInitializing)
	return h
}

// Get returns the current status.
func (h *StatusHolder) Get() Status {
	return h.v.Load().(Status)
}

// Set overwrites the current status. Only the framework should call this.
func (h *StatusHolder) Set(s Status) {
	h.v.Store(s)
}

// SafeInitialize calls s.Initialize, recovering from a panic and converting
// both a panic and a returned error into StatusError. Returns true only when
// Initialize both completed without panicking and returned a nil error, in
// which case status becomes StatusReady.
func SafeInitialize(ctx context.Context, s Skill, status *StatusHolder) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			status.Set(StatusError)
			ok = false
		}
	}()

	if err := s.Initialize(ctx); err != nil {
		status.Set(StatusError)
		return false
	}
	status.Set(StatusReady)
	return true
}

// SafeHandle calls s.Handle, recovering from a panic. Only a panic counts as
// a runtime exception: it moves status to StatusError and converts the
// panic into an error Response. A deliberate failure response (e.g. the
// BaseSkill default "Unknown intent") is not an exception and leaves status
// untouched.
func SafeHandle(ctx context.Context, s Skill, req Request, status *StatusHolder) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			status.Set(StatusError)
			resp = Response{
				RequestID: req.ID,
				Success:   false,
				Message:   "internal error",
				Error:     fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	return s.Handle(ctx, req)
}
