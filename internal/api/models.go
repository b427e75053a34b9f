package api

import (
	"time"

	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
)

// CreateNoteRequest represents the request body for creating a new note
type CreateNoteRequest struct {
	Summary string `json:"summary" validate:"required,min=1,max=59"`
	Details string `json:"details" validate:"required,min=1,max=1023"`
}

// UpdateNoteRequest represents the request body for patching a note.
// Each field is optional; only fields present in the body are changed.
type UpdateNoteRequest struct {
	Summary *string `json:"summary" validate:"omitempty,min=1,max=59"`
	Details *string `json:"details" validate:"omitempty,min=1,max=1023"`
}

// NoteResponse represents the response data for a note
type NoteResponse struct {
	NoteID       string    `json:"noteId"`
	Summary      string    `json:"summary"`
	Details      string    `json:"details"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedDate time.Time `json:"modifiedDate"`
}

// AttachmentResponse represents the listing metadata for one attachment
type AttachmentResponse struct {
	AttachmentID string    `json:"attachmentId"`
	ContentType  string    `json:"contentType"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
	Length       int64     `json:"length"`
}

// ArchiveResponse represents the listing metadata for one built archive
type ArchiveResponse struct {
	ArchiveID    string    `json:"archiveId"`
	ContentType  string    `json:"contentType"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
	Length       int64     `json:"length"`
}

// ArchiveRequestedResponse is returned when an archive build is accepted
type ArchiveRequestedResponse struct {
	NoteID    string `json:"noteId"`
	ArchiveID string `json:"archiveId"`
}

// noteToResponse converts a domain.Note to a NoteResponse
func noteToResponse(note *domain.Note) NoteResponse {
	return NoteResponse{
		NoteID:       note.ID.String(),
		Summary:      note.Summary,
		Details:      note.Details,
		CreatedDate:  note.CreatedDate,
		ModifiedDate: note.ModifiedDate,
	}
}

// notesToResponse converts a slice of notes, returning an empty slice
// rather than nil so the JSON body is always an array.
func notesToResponse(notes []*domain.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, noteToResponse(note))
	}
	return out
}

// attachmentsToResponse converts blob metadata to attachment DTOs.
func attachmentsToResponse(infos []blob.ObjectInfo) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, AttachmentResponse{
			AttachmentID: info.Key,
			ContentType:  info.ContentType,
			Created:      info.CreatedAt,
			LastModified: info.LastModified,
			Length:       info.Size,
		})
	}
	return out
}

// archivesToResponse converts blob metadata to archive DTOs.
func archivesToResponse(infos []blob.ObjectInfo) []ArchiveResponse {
	out := make([]ArchiveResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, ArchiveResponse{
			ArchiveID:    info.Key,
			ContentType:  info.ContentType,
			Created:      info.CreatedAt,
			LastModified: info.LastModified,
			Length:       info.Size,
		})
	}
	return out
}
