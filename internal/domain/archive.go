package domain

import (
	"errors"

	"github.com/google/uuid"
)

// ZipContentType is the content type of every archive object.
const ZipContentType = "application/zip"

// archiveContainerSuffix distinguishes a note's archive container from its
// attachment container in the object store.
const archiveContainerSuffix = "-zip"

// Common validation errors for ArchiveRequest
var (
	ErrEmptyArchiveNoteID = errors.New("archive request note ID cannot be empty")
	ErrEmptyArchiveID     = errors.New("archive request archive ID cannot be empty")
)

// ArchiveRequest is the message carried from the archive producer to the
// worker. ArchiveID is minted fresh per request, so concurrent requests for
// the same note never collide on the output key.
type ArchiveRequest struct {
	NoteID    uuid.UUID `json:"noteId"`
	ArchiveID string    `json:"archiveId"`
}

// NewArchiveRequest mints an archive request for the given note with a fresh
// unique archive ID.
func NewArchiveRequest(noteID uuid.UUID) (*ArchiveRequest, error) {
	req := &ArchiveRequest{
		NoteID:    noteID,
		ArchiveID: uuid.New().String() + ".zip",
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks that both keys of the request are present.
func (r *ArchiveRequest) Validate() error {
	if r.NoteID == uuid.Nil {
		return ErrEmptyArchiveNoteID
	}
	if r.ArchiveID == "" {
		return ErrEmptyArchiveID
	}
	return nil
}

// AttachmentContainer returns the object store container holding a note's
// attachments.
func AttachmentContainer(noteID uuid.UUID) string {
	return noteID.String()
}

// ArchiveContainer returns the object store container holding a note's
// built archives.
func ArchiveContainer(noteID uuid.UUID) string {
	return noteID.String() + archiveContainerSuffix
}
