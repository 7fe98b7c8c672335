// Package registry maintains the name→skill and intent→skill mappings and
// fans dispatch, heartbeat, and initialization out across every registered
// skill.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/skill"
)

type entry struct {
	sk     skill.Skill
	status *skill.StatusHolder
}

// Registry is safe for concurrent use: Register takes the write lock and
// lookups take the read lock.
type Registry struct {
	mu           sync.RWMutex
	byName       map[string]*entry
	order        []string // insertion order, for display
	intentIndex  map[string]string
	heartbeatTTL time.Duration
	logger       *slog.Logger
}

// New builds an empty Registry. heartbeatTTL bounds each skill's per-call
// heartbeat deadline; pass 0 to use a 5s default.
func New(heartbeatTTL time.Duration, logger *slog.Logger) *Registry {
	if heartbeatTTL == 0 {
		heartbeatTTL = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byName:       make(map[string]*entry),
		intentIndex:  make(map[string]string),
		heartbeatTTL: heartbeatTTL,
		logger:       logger,
	}
}

// Register adds sk under its metadata name. Fails if the name is already
// registered or if any of its intents already belong to another skill. Does
// not initialize the skill.
func (r *Registry) Register(sk skill.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := sk.Metadata()
	if meta.Name == "" {
		return fmt.Errorf("registry: skill metadata.name must not be empty")
	}
	if _, exists := r.byName[meta.Name]; exists {
		return fmt.Errorf("registry: skill %q already registered", meta.Name)
	}
	for _, intent := range meta.Intents {
		if owner, exists := r.intentIndex[intent]; exists {
			return fmt.Errorf("registry: intent %q already claimed by skill %q", intent, owner)
		}
	}

	r.byName[meta.Name] = &entry{sk: sk, status: skill.NewStatusHolder()}
	r.order = append(r.order, meta.Name)
	for _, intent := range meta.Intents {
		r.intentIndex[intent] = meta.Name
	}
	return nil
}

// InitializeAll runs every skill's initializer concurrently (bounded by the
// number of registered skills — there is no separate pool to exhaust) and
// collects a per-skill success map.
func (r *Registry) InitializeAll(ctx context.Context) map[string]bool {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	r.mu.RUnlock()

	results := make(map[string]bool, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		name := name
		r.mu.RLock()
		e := r.byName[name]
		r.mu.RUnlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			ok := skill.SafeInitialize(ctx, e.sk, e.status)
			mu.Lock()
			results[name] = ok
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

// HandleRequest resolves req.Intent to a skill and dispatches it, recovering
// from any panic via SafeHandle.
func (r *Registry) HandleRequest(ctx context.Context, req skill.Request) skill.Response {
	r.mu.RLock()
	name, ok := r.intentIndex[req.Intent]
	var e *entry
	if ok {
		e = r.byName[name]
	}
	r.mu.RUnlock()

	if !ok || e == nil {
		return skill.ErrorResponse(req, "No skill found for intent")
	}
	return skill.SafeHandle(ctx, e.sk, req, e.status)
}

// RunHeartbeat fans out OnHeartbeat to every ready skill concurrently, each
// bounded by the registry's heartbeat deadline, and concatenates the
// results in skill registration order. A failing or timed-out skill's
// actions are dropped and logged; it never fails the whole beat.
func (r *Registry) RunHeartbeat(ctx context.Context, userIDs []string) []skill.HeartbeatAction {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	entries := make(map[string]*entry, len(names))
	for _, n := range names {
		entries[n] = r.byName[n]
	}
	r.mu.RUnlock()

	resultsByName := make(map[string][]skill.HeartbeatAction)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		e := entries[name]
		if e.status.Get() != skill.StatusReady {
			continue
		}
		name, e := name, e
		wg.Add(1)
		go func() {
			defer wg.Done()
			actions := r.beatOne(ctx, name, e, userIDs)
			mu.Lock()
			resultsByName[name] = actions
			mu.Unlock()
		}()
	}
	wg.Wait()

	var out []skill.HeartbeatAction
	for _, name := range names {
		out = append(out, resultsByName[name]...)
	}
	return out
}

func (r *Registry) beatOne(ctx context.Context, name string, e *entry, userIDs []string) []skill.HeartbeatAction {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("registry: heartbeat panic", "skill", name, "panic", rec)
		}
	}()

	deadlineCtx, cancel := context.WithTimeout(ctx, r.heartbeatTTL)
	defer cancel()

	// OnHeartbeat isn't itself context-cancellation-aware in the Skill
	// interface; the deadline bounds how long the framework waits for it.
	done := make(chan []skill.HeartbeatAction, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("registry: heartbeat panic", "skill", name, "panic", rec)
				done <- nil
				return
			}
		}()
		done <- e.sk.OnHeartbeat(ctx, userIDs)
	}()

	select {
	case actions := <-done:
		return actions
	case <-deadlineCtx.Done():
		r.logger.Warn("registry: heartbeat deadline exceeded", "skill", name)
		return nil
	}
}

// GetSystemPromptFragments collects non-empty fragments from every ready
// skill.
func (r *Registry) GetSystemPromptFragments(ctx context.Context, userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fragments []string
	for _, name := range r.order {
		e := r.byName[name]
		if e.status.Get() != skill.StatusReady {
			continue
		}
		if frag := e.sk.PromptFragment(ctx, userID); frag != "" {
			fragments = append(fragments, frag)
		}
	}
	return fragments
}

// ListIntents returns the full intent→skill-name index.
func (r *Registry) ListIntents() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.intentIndex))
	for k, v := range r.intentIndex {
		out[k] = v
	}
	return out
}

// StatusSummary is the registry's health-at-a-glance view.
type StatusSummary struct {
	TotalSkills  int
	ReadyCount   int
	ErrorCount   int
	ByStatus     map[skill.Status][]string
	TotalIntents int
}

// GetStatusSummary tallies every skill's current status.
func (r *Registry) GetStatusSummary() StatusSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := StatusSummary{
		TotalSkills:  len(r.order),
		ByStatus:     make(map[skill.Status][]string),
		TotalIntents: len(r.intentIndex),
	}
	for _, name := range r.order {
		st := r.byName[name].status.Get()
		summary.ByStatus[st] = append(summary.ByStatus[st], name)
		switch st {
		case skill.StatusReady:
			summary.ReadyCount++
		case skill.StatusError:
			summary.ErrorCount++
		}
	}
	return summary
}

// Metadata returns the registered skill's metadata, or ok=false if absent.
func (r *Registry) Metadata(name string) (skill.Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return skill.Metadata{}, false
	}
	return e.sk.Metadata(), true
}

// ListMetadata returns every registered skill's metadata in registration
// order.
func (r *Registry) ListMetadata() []skill.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]skill.Metadata, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].sk.Metadata())
	}
	return out
}

// Status returns the registered skill's current status, or ok=false if
// absent.
func (r *Registry) Status(name string) (skill.Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return "", false
	}
	return e.status.Get(), true
}

// RestartFirstErrored implements health.SkillRestarter: it locates the
// first skill (in registration order) whose status is error and calls
// SafeInitialize on it again.
func (r *Registry) RestartFirstErrored(ctx context.Context) (bool, string, error) {
	r.mu.RLock()
	var target *entry
	var name string
	for _, n := range r.order {
		e := r.byName[n]
		if e.status.Get() == skill.StatusError {
			target, name = e, n
			break
		}
	}
	r.mu.RUnlock()

	if target == nil {
		return false, "", nil
	}
	ok := skill.SafeInitialize(ctx, target.sk, target.status)
	return ok, name, nil
}

// sortedNames returns registered skill names in ascending order. Nothing in
// this package calls it at present; RunHeartbeat and
// GetSystemPromptFragments use registration order.
func (r *Registry) sortedNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
