// Package server exposes the skill registry, RBAC, and settings subsystems
// over the HTTP API described in §6: a flat route table behind a shared
// secret, JSON in and out, with /health always reachable unauthenticated.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/veyra-ai/veyra/common/observability"
	"github.com/veyra-ai/veyra/common/trace"
	"github.com/veyra-ai/veyra/internal/veyra/health"
	"github.com/veyra-ai/veyra/internal/veyra/rbac"
	"github.com/veyra-ai/veyra/internal/veyra/registry"
	"github.com/veyra-ai/veyra/internal/veyra/settings"
	"github.com/veyra-ai/veyra/internal/veyra/skill"
)

// Config holds the (mostly optional) dependencies for Server. Registry is
// required; RBAC and Settings are optional — their routes answer 501 when
// not wired, per §7's "collaborator unavailable" policy.
type Config struct {
	Addr      string
	APISecret string // optional — empty disables auth entirely

	Registry *registry.Registry
	RBAC     *rbac.Service            // optional — enables /users…
	Settings *settings.Service        // optional — enables /settings…
	Metrics  *health.PrometheusSource // optional — records /handle outcomes

	Logger *slog.Logger
}

// Server is the Skills HTTP Server.
type Server struct {
	cfg    Config
	logger *slog.Logger
	http   *http.Server
}

// New builds a Server from cfg. Registry must be non-nil.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /handle", s.handleDispatch)
	mux.HandleFunc("POST /heartbeat", s.handleHeartbeat)
	mux.HandleFunc("GET /skills", s.handleListSkills)
	mux.HandleFunc("GET /skills/{name}", s.handleGetSkill)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /prompt-fragments", s.handlePromptFragments)
	mux.HandleFunc("GET /intents", s.handleIntents)

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", s.handleSetUserRole)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /settings", s.handleListSettings)
	mux.HandleFunc("GET /settings/{namespace}/{key}", s.handleGetSetting)
	mux.HandleFunc("PUT /settings/{namespace}/{key}", s.handlePutSetting)
	mux.HandleFunc("DELETE /settings/{namespace}/{key}", s.handleDeleteSetting)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRecover(s.withTrace(s.withAuth(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// withRecover converts a panicking handler into the documented 500 response
// instead of letting net/http's per-connection recovery reset the
// connection — every route here must answer {"error": "..."} on failure,
// including routes that never call skill code (e.g. handleListUsers,
// handleStatus).
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic handling request", "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withTrace assigns a trace ID to every request lacking one (propagating an
// inbound X-Trace-ID when the caller already set one) so every downstream
// log line for this request — including the one handleDispatch emits —
// carries the same trace_id.
func (s *Server) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Trace-ID")
		if id == "" {
			id = trace.GenerateID()
		}
		w.Header().Set("X-Trace-ID", id)
		next.ServeHTTP(w, r.WithContext(trace.WithTraceID(r.Context(), id)))
	})
}

// Start binds the listener and serves in the background, returning once the
// listener is bound so callers can immediately send requests.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	s.logger.Info("skills server listening", "addr", ln.Addr().String())
	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("skills server error", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		s.http.Shutdown(context.Background())
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.http.Shutdown(ctx)
}

// withAuth compares X-API-Secret against the configured secret in constant
// time, bypassing the check entirely for /health. No secret configured
// means no auth is enforced at all (useful for local/dev wiring).
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || s.cfg.APISecret == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("X-API-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.APISecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary := s.cfg.Registry.GetStatusSummary()
	status := "healthy"
	if summary.ReadyCount == 0 && summary.TotalSkills > 0 {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"skills_ready": summary.ReadyCount,
		"skills_total": summary.TotalSkills,
	})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req skill.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	start := time.Now()
	resp := s.cfg.Registry.HandleRequest(r.Context(), req)
	outcome := "success"
	if !resp.Success {
		outcome = "error"
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordDispatch(req.Intent, outcome, time.Since(start).Seconds())
	}
	observability.WithTrace(r.Context()).Debug("dispatched request",
		"intent", req.Intent, "user_id", req.UserID, "outcome", outcome)
	writeJSON(w, http.StatusOK, resp.ToMapping())
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	actions := s.cfg.Registry.RunHeartbeat(r.Context(), body.UserIDs)
	out := make([]map[string]any, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.ToMapping())
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": out})
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	metas := s.cfg.Registry.ListMetadata()
	out := make([]map[string]any, 0, len(metas))
	for _, m := range metas {
		out = append(out, m.ToMapping())
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": out})
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	meta, ok := s.cfg.Registry.Metadata(name)
	if !ok {
		writeError(w, http.StatusNotFound, "skill not found")
		return
	}
	writeJSON(w, http.StatusOK, meta.ToMapping())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	summary := s.cfg.Registry.GetStatusSummary()
	byStatus := make(map[string][]string, len(summary.ByStatus))
	for status, names := range summary.ByStatus {
		byStatus[string(status)] = names
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_skills":  summary.TotalSkills,
		"ready_count":   summary.ReadyCount,
		"error_count":   summary.ErrorCount,
		"total_intents": summary.TotalIntents,
		"by_status":     byStatus,
	})
}

func (s *Server) handlePromptFragments(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	fragments := s.cfg.Registry.GetSystemPromptFragments(r.Context(), userID)
	if fragments == nil {
		fragments = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"fragments": fragments})
}

func (s *Server) handleIntents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"intents": s.cfg.Registry.ListIntents()})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
