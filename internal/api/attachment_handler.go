package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/notekeeper-api/internal/api/shared"
	"github.com/phrazzld/notekeeper-api/internal/service"
)

// defaultContentType is recorded when a client omits the Content-Type header.
const defaultContentType = "application/octet-stream"

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachments service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachments service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload handles PUT /notes/{noteId}/attachments/{attachmentId} requests.
// The raw request body is the attachment content. Responds 201 when a new
// attachment was created and 204 when an existing one was replaced.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}
	attachmentID := chi.URLParam(r, "attachmentId")

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	} else if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = parsed
	}

	created, err := h.attachments.Upload(
		r.Context(),
		noteID,
		attachmentID,
		r.Body,
		r.ContentLength,
		contentType,
	)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	if created {
		w.Header().Set("Location", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /notes/{noteId}/attachments requests
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}

	infos, err := h.attachments.List(r.Context(), noteID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, attachmentsToResponse(infos))
}

// Download handles GET /notes/{noteId}/attachments/{attachmentId} requests.
// The attachment content is streamed as the response body.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}
	attachmentID := chi.URLParam(r, "attachmentId")

	rc, contentType, err := h.attachments.Get(r.Context(), noteID, attachmentID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.Error("failed to close attachment reader", "error", err)
		}
	}()

	if contentType == "" {
		contentType = defaultContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": attachmentID,
	}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to stream attachment",
			"error", err,
			"note_id", noteID,
			"attachment_id", attachmentID)
	}
}

// Delete handles DELETE /notes/{noteId}/attachments/{attachmentId} requests
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}
	attachmentID := chi.URLParam(r, "attachmentId")

	if err := h.attachments.Delete(r.Context(), noteID, attachmentID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
