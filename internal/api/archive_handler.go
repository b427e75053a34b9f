package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/notekeeper-api/internal/api/shared"
	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/service"
)

// ArchiveHandler handles attachment zip archive HTTP requests
type ArchiveHandler struct {
	archives service.ArchiveService
}

// NewArchiveHandler creates a new ArchiveHandler
func NewArchiveHandler(archives service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archives: archives}
}

// Request handles POST /notes/{noteId}/attachmentszipfiles requests.
// The build runs asynchronously; the response is 202 Accepted with a
// Location header pointing at where the archive will appear.
func (h *ArchiveHandler) Request(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}

	archiveID, err := h.archives.RequestArchive(r.Context(), noteID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/notes/%s/attachmentszipfiles/%s", noteID, archiveID))
	shared.RespondWithJSON(w, r, http.StatusAccepted, ArchiveRequestedResponse{
		NoteID:    noteID.String(),
		ArchiveID: archiveID,
	})
}

// List handles GET /notes/{noteId}/attachmentszipfiles requests
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}

	infos, err := h.archives.ListArchives(r.Context(), noteID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, archivesToResponse(infos))
}

// Download handles GET /notes/{noteId}/attachmentszipfiles/{archiveId} requests.
// The zip content is streamed as the response body.
func (h *ArchiveHandler) Download(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}
	archiveID := chi.URLParam(r, "archiveId")

	rc, err := h.archives.GetArchive(r.Context(), noteID, archiveID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.Error("failed to close archive reader", "error", err)
		}
	}()

	w.Header().Set("Content-Type", domain.ZipContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": archiveID,
	}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to stream archive",
			"error", err,
			"note_id", noteID,
			"archive_id", archiveID)
	}
}

// Delete handles DELETE /notes/{noteId}/attachmentszipfiles/{archiveId} requests
func (h *ArchiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID, err := noteIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}
	archiveID := chi.URLParam(r, "archiveId")

	if err := h.archives.DeleteArchive(r.Context(), noteID, archiveID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
