package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oszuidwest/zwfm-ffpath/internal/types"
	"github.com/oszuidwest/zwfm-ffpath/internal/util"
)

// API response helpers

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseJSON reads and parses JSON from request body.
// Returns parsed value and true on success, zero value and false on failure.
func parseJSON[T any](s *Server, w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return v, false
	}
	return v, true
}

// handleAPIDetect runs the detection oracle.
// POST /api/ffmpeg/detect
//
// An absent or empty ffmpeg_path requests auto-detection; a present path
// requests verification of that exact executable.
func (s *Server) handleAPIDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, ok := parseJSON[types.FFmpegPathRequest](s, w, r)
	if !ok {
		return
	}

	var result *types.ProbeResult
	if req.FFmpegPath == "" {
		result = s.detector.Detect(r.Context(), s.config.GetFFmpegPath())
	} else {
		result = s.detector.Verify(r.Context(), req.FFmpegPath)
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleAPIFFmpegPath persists the FFmpeg path as the sole operation.
// POST /api/settings/ffmpeg-path
func (s *Server) handleAPIFFmpegPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, ok := parseJSON[types.FFmpegPathRequest](s, w, r)
	if !ok {
		return
	}

	// An empty path clears the configured value.
	if req.FFmpegPath != "" {
		if err := util.ValidatePath("ffmpeg_path", req.FFmpegPath); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := s.config.SetFFmpegPath(req.FFmpegPath); err != nil {
		slog.Error("failed to persist ffmpeg path", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SettingsUpdateRequest is the request body for POST /api/settings.
// Nil fields are left unchanged, so a full blob round-trip preserves
// everything the sender did not touch.
type SettingsUpdateRequest struct {
	FFmpegPath *string `json:"ffmpeg_path"`

	// Webhook
	WebhookURL *string `json:"webhook_url"`

	// Log
	LogPath *string `json:"log_path"`

	// Email
	GraphTenantID     *string `json:"graph_tenant_id"`
	GraphClientID     *string `json:"graph_client_id"`
	GraphClientSecret *string `json:"graph_client_secret"`
	GraphFromAddress  *string `json:"graph_from_address"`
	GraphRecipients   *string `json:"graph_recipients"`
}

// handleAPISettings serves the generic settings blob.
// GET /api/settings returns the flattened settings view.
// POST /api/settings applies a partial update.
func (s *Server) handleAPISettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getSettingsAPI(w)
	case http.MethodPost:
		s.updateSettingsAPI(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) getSettingsAPI(w http.ResponseWriter) {
	snap := s.config.Snapshot()

	// The client secret never leaves the server; only its presence does.
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ffmpeg_path":        snap.FFmpegPath,
		"min_version":        snap.MinVersion,
		"webhook_url":        snap.WebhookURL,
		"log_path":           snap.LogPath,
		"graph_tenant_id":    snap.GraphTenantID,
		"graph_client_id":    snap.GraphClientID,
		"graph_from_address": snap.GraphFromAddress,
		"graph_recipients":   snap.GraphRecipients,
		"graph_has_secret":   snap.GraphClientSecret != "",
	})
}

func (s *Server) updateSettingsAPI(w http.ResponseWriter, r *http.Request) {
	req, ok := parseJSON[SettingsUpdateRequest](s, w, r)
	if !ok {
		return
	}

	snap := s.config.Snapshot()

	if req.FFmpegPath != nil && *req.FFmpegPath != snap.FFmpegPath {
		if *req.FFmpegPath != "" {
			if err := util.ValidatePath("ffmpeg_path", *req.FFmpegPath); err != nil {
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if err := s.config.SetFFmpegPath(*req.FFmpegPath); err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to save")
			return
		}
	}

	if req.WebhookURL != nil && *req.WebhookURL != snap.WebhookURL {
		if err := s.config.SetWebhookURL(*req.WebhookURL); err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to save")
			return
		}
	}

	if req.LogPath != nil && *req.LogPath != snap.LogPath {
		if err := s.config.SetLogPath(*req.LogPath); err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to save")
			return
		}
	}

	if req.GraphTenantID != nil || req.GraphClientID != nil || req.GraphClientSecret != nil ||
		req.GraphFromAddress != nil || req.GraphRecipients != nil {
		if err := s.config.SetGraphConfig(
			coalescePtr(req.GraphTenantID, snap.GraphTenantID),
			coalescePtr(req.GraphClientID, snap.GraphClientID),
			coalescePtr(req.GraphClientSecret, snap.GraphClientSecret),
			coalescePtr(req.GraphFromAddress, snap.GraphFromAddress),
			coalescePtr(req.GraphRecipients, snap.GraphRecipients),
		); err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to save")
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// coalescePtr returns the pointed-to value, or fallback when p is nil.
func coalescePtr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}
