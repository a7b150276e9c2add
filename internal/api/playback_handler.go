// Package api exposes playback, selection, and catalog management over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/echophrase/echophrase/internal/playback"
	"github.com/echophrase/echophrase/internal/preload"
)

// PlaybackHandler handles playback-related API endpoints
type PlaybackHandler struct {
	controller *playback.Controller
	scheduler  *preload.Scheduler
}

// NewPlaybackHandler creates a new playback handler
func NewPlaybackHandler(controller *playback.Controller, scheduler *preload.Scheduler) *PlaybackHandler {
	return &PlaybackHandler{
		controller: controller,
		scheduler:  scheduler,
	}
}

// PlayRequest is the body of POST /api/v1/playback/play
type PlayRequest struct {
	Mode     string `json:"mode"`
	Sentence int    `json:"sentence"`
	Phrase   int    `json:"phrase"`
}

// Play handles POST /api/v1/playback/play
func (h *PlaybackHandler) Play(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = string(playback.ModeSentence)
	}

	var err error
	switch playback.Mode(req.Mode) {
	case playback.ModeSentence:
		err = h.controller.PlaySentence(req.Sentence)
	case playback.ModePhrase:
		err = h.controller.PlayPhrase(req.Sentence, req.Phrase)
	default:
		respondError(w, "Unknown play mode: "+req.Mode, http.StatusBadRequest)
		return
	}
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, h.controller.Status(), http.StatusAccepted)
}

// Stop handles POST /api/v1/playback/stop
func (h *PlaybackHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.controller.Stop()
	respondJSON(w, h.controller.Status(), http.StatusOK)
}

// Status handles GET /api/v1/playback/status
func (h *PlaybackHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, h.controller.Status(), http.StatusOK)
}

// SelectionRequest is the body of POST /api/v1/selection
type SelectionRequest struct {
	Sentence int `json:"sentence"`
}

// Selection handles POST /api/v1/selection. Moving the selection warms
// the cache for the sentences the user is about to reach.
func (h *PlaybackHandler) Selection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Sentence < 0 {
		respondError(w, "Sentence index must not be negative", http.StatusBadRequest)
		return
	}

	h.scheduler.OnSelectionChanged(req.Sentence)
	respondJSON(w, map[string]int{"sentence": req.Sentence}, http.StatusAccepted)
}

// Helper functions

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
