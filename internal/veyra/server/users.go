package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/rbac"
)

// performerFromRequest resolves the calling user's own rbac.User from the
// performer_id every /users… body or query carries — there is no separate
// session/token-to-identity mapping in this spec, so the caller states its
// own identity and the service re-validates it has the role it claims.
func (s *Server) performerFromRequest(r *http.Request, performerID string) (rbac.User, bool, error) {
	if performerID == "" {
		return rbac.User{}, false, nil
	}
	return s.cfg.RBAC.GetUser(r.Context(), performerID)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RBAC == nil {
		writeError(w, http.StatusNotImplemented, "rbac not configured")
		return
	}
	users, err := s.cfg.RBAC.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, userToMapping(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RBAC == nil {
		writeError(w, http.StatusNotImplemented, "rbac not configured")
		return
	}
	u, ok, err := s.cfg.RBAC.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, userToMapping(u))
}

type createUserRequest struct {
	PerformerID string `json:"performer_id"`
	ID          string `json:"id"`
	ContactID   string `json:"contact_id"`
	Role        string `json:"role"`
	Reason      string `json:"reason"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RBAC == nil {
		writeError(w, http.StatusNotImplemented, "rbac not configured")
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	performer, ok, err := s.performerFromRequest(r, req.PerformerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown performer_id")
		return
	}

	newUser := rbac.User{ID: req.ID, ContactID: req.ContactID, Role: rbac.Role(req.Role)}
	err = s.cfg.RBAC.CreateUser(r.Context(), performer, newUser, req.Reason)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
	case rbac.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, rbac.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type setRoleRequest struct {
	PerformerID string `json:"performer_id"`
	Role        string `json:"role"`
	Reason      string `json:"reason"`
}

func (s *Server) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RBAC == nil {
		writeError(w, http.StatusNotImplemented, "rbac not configured")
		return
	}
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	performer, ok, err := s.performerFromRequest(r, req.PerformerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown performer_id")
		return
	}

	role := rbac.Role(req.Role)
	err = s.cfg.RBAC.SetRole(r.Context(), performer, r.PathValue("id"), role, req.Reason)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case errors.Is(err, rbac.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case rbac.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, rbac.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type deleteUserRequest struct {
	PerformerID string `json:"performer_id"`
	Reason      string `json:"reason"`
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RBAC == nil {
		writeError(w, http.StatusNotImplemented, "rbac not configured")
		return
	}
	var req deleteUserRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	performer, ok, err := s.performerFromRequest(r, req.PerformerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown performer_id")
		return
	}

	err = s.cfg.RBAC.DeleteUser(r.Context(), performer, r.PathValue("id"), req.Reason)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case errors.Is(err, rbac.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case rbac.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func userToMapping(u rbac.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"contact_id": u.ContactID,
		"role":       string(u.Role),
		"created_at": u.CreatedAt.Truncate(time.Second),
	}
}
