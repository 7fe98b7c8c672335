package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veyra-ai/veyra/internal/veyra/settings"
)

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Settings == nil {
		writeError(w, http.StatusNotImplemented, "settings not configured")
		return
	}
	namespace := r.URL.Query().Get("namespace")
	if namespace == "" {
		writeError(w, http.StatusBadRequest, "namespace is required")
		return
	}
	values, err := s.cfg.Settings.List(r.Context(), namespace)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": values})
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Settings == nil {
		writeError(w, http.StatusNotImplemented, "settings not configured")
		return
	}
	namespace, key := r.PathValue("namespace"), r.PathValue("key")
	value, err := s.cfg.Settings.Get(r.Context(), namespace, key)
	if errors.Is(err, settings.ErrNotFound) {
		writeError(w, http.StatusNotFound, "setting not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"namespace": namespace, "key": key, "value": value})
}

type putSettingRequest struct {
	Value    string `json:"value"`
	DataType string `json:"data_type"`
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Settings == nil {
		writeError(w, http.StatusNotImplemented, "settings not configured")
		return
	}
	var req putSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	namespace, key := r.PathValue("namespace"), r.PathValue("key")
	err := s.cfg.Settings.Put(r.Context(), settings.Setting{
		Namespace: namespace,
		Key:       key,
		Value:     req.Value,
		DataType:  settings.DataType(req.DataType),
	})
	if errors.Is(err, settings.ErrUnknownNamespace) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Settings == nil {
		writeError(w, http.StatusNotImplemented, "settings not configured")
		return
	}
	namespace, key := r.PathValue("namespace"), r.PathValue("key")
	if err := s.cfg.Settings.Delete(r.Context(), namespace, key); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
