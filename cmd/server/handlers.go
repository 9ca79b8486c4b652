package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"signal-dashboard-go/internal/archive"
	"signal-dashboard-go/internal/ingest"
	"signal-dashboard-go/internal/store"

	"go.uber.org/zap"
)

// APIHandler holds dependencies for the HTTP endpoints.
type APIHandler struct {
	log      *zap.Logger
	state    *store.State
	pipeline *ingest.Pipeline
	archive  *archive.Archive // nil when disabled
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, state *store.State, pipeline *ingest.Pipeline, archiveStore *archive.Archive) *APIHandler {
	return &APIHandler{log: log, state: state, pipeline: pipeline, archive: archiveStore}
}

// webhookResponse is the body returned to the alert source.
type webhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// WebhookHandler ingests one signal. The body is read as JSON whatever
// content type the source declared; alert sources routinely send JSON
// labelled text/plain.
func (h *APIHandler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("Failed to read webhook body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Detail: "failed to read body"})
		return
	}

	if _, err := h.pipeline.Ingest(r.Context(), body); err != nil {
		var parseErr *ingest.ParseError
		if errors.As(err, &parseErr) {
			writeJSON(w, http.StatusUnprocessableEntity, webhookResponse{Status: "error", Detail: parseErr.Detail})
			return
		}
		h.log.Error("Ingest failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, webhookResponse{Status: "error", Detail: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{Status: "success", Message: "Signal received"})
}

// StatsHandler returns the current statistics snapshot.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Snapshot())
}

// SignalsHandler returns the recent signal history, newest first.
func (h *APIHandler) SignalsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Signals())
}

// ArchiveHandler returns recently archived signals from the local
// database. When the archive is disabled it returns an empty list.
func (h *APIHandler) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}

	records, err := h.archive.Recent(100)
	if err != nil {
		h.log.Error("Failed to read archive", zap.Error(err))
		http.Error(w, "failed to read archive", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
