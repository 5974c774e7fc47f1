// Package handler exposes the document upload HTTP endpoint backed by
// internal/ingestion/publisher.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scisearch/engine/internal/ingestion"
	"github.com/scisearch/engine/internal/ingestion/publisher"
	"github.com/scisearch/engine/internal/ingestion/validator"
	apperrors "github.com/scisearch/engine/pkg/errors"
	"github.com/scisearch/engine/pkg/logger"
)

// Handler serves the upload endpoint.
type Handler struct {
	publisher *publisher.Publisher
	logger    *slog.Logger
}

// New wraps a Publisher.
func New(pub *publisher.Publisher) *Handler {
	return &Handler{
		publisher: pub,
		logger:    slog.Default().With("component", "ingestion-handler"),
	}
}

// Upload decodes, validates, and queues a document upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ingestion.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidateUploadRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.publisher.Upload(ctx, &req)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("upload failed", "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, "upload failed")
		return
	}
	log.Info("document queued", "doc_id", resp.DocID, "duplicate", resp.Duplicate)
	h.writeJSON(w, http.StatusAccepted, resp)
}

// Health reports liveness for this service's own handler-level checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
