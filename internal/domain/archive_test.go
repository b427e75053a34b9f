package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewArchiveRequest(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()

	req, err := NewArchiveRequest(noteID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if req.NoteID != noteID {
		t.Errorf("Expected note ID %s, got %s", noteID, req.NoteID)
	}

	if !strings.HasSuffix(req.ArchiveID, ".zip") {
		t.Errorf("Expected archive ID with .zip suffix, got %q", req.ArchiveID)
	}

	idPart := strings.TrimSuffix(req.ArchiveID, ".zip")
	if _, err := uuid.Parse(idPart); err != nil {
		t.Errorf("Expected UUID-based archive ID, got %q: %v", req.ArchiveID, err)
	}

	// Each request mints a distinct archive ID
	other, err := NewArchiveRequest(noteID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if other.ArchiveID == req.ArchiveID {
		t.Errorf("Expected distinct archive IDs, both were %q", req.ArchiveID)
	}

	_, err = NewArchiveRequest(uuid.Nil)
	if err != ErrEmptyArchiveNoteID {
		t.Errorf("Expected error %v, got %v", ErrEmptyArchiveNoteID, err)
	}
}

func TestArchiveRequestValidate(t *testing.T) {
	t.Parallel()

	req := ArchiveRequest{NoteID: uuid.New(), ArchiveID: ""}
	if err := req.Validate(); err != ErrEmptyArchiveID {
		t.Errorf("Expected error %v, got %v", ErrEmptyArchiveID, err)
	}
}

func TestContainerNames(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()

	if got := AttachmentContainer(noteID); got != noteID.String() {
		t.Errorf("Expected attachment container %q, got %q", noteID.String(), got)
	}

	if got := ArchiveContainer(noteID); got != noteID.String()+"-zip" {
		t.Errorf("Expected archive container %q, got %q", noteID.String()+"-zip", got)
	}
}
