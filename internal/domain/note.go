package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Length bounds for note fields. Both are exclusive upper bounds:
// a summary of 60 characters is rejected.
const (
	MaxSummaryLength = 60
	MaxDetailsLength = 1024
)

// Common validation errors for Note
var (
	ErrEmptyNoteID    = errors.New("note ID cannot be empty")
	ErrInvalidSummary = errors.New("summary must be between 1 and 59 characters")
	ErrInvalidDetails = errors.New("details must be between 1 and 1023 characters")
)

// Note represents a single note. Attachments and archives are not part of
// the entity; they live in per-note object storage containers keyed by the
// note's ID.
type Note struct {
	ID           uuid.UUID `json:"noteId"`
	Summary      string    `json:"summary"`
	Details      string    `json:"details"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedDate time.Time `json:"modifiedDate"`
}

// NewNote creates a new Note with the given summary and details.
// It generates a new UUID for the note ID and sets both timestamps.
// Returns an error if validation fails.
func NewNote(summary, details string) (*Note, error) {
	now := time.Now().UTC()
	note := &Note{
		ID:           uuid.New(),
		Summary:      summary,
		Details:      details,
		CreatedDate:  now,
		ModifiedDate: now,
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
// Returns an error if any field fails validation.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNoteID
	}

	if err := ValidateSummary(n.Summary); err != nil {
		return err
	}

	return ValidateDetails(n.Details)
}

// ValidateSummary checks a summary against the configured length bounds.
// Lengths are counted in characters, not bytes, so multibyte summaries
// are bounded the same way the API layer bounds them.
func ValidateSummary(summary string) error {
	if n := utf8.RuneCountInString(summary); n < 1 || n >= MaxSummaryLength {
		return ErrInvalidSummary
	}
	return nil
}

// ValidateDetails checks a details body against the configured length bounds.
func ValidateDetails(details string) error {
	if n := utf8.RuneCountInString(details); n < 1 || n >= MaxDetailsLength {
		return ErrInvalidDetails
	}
	return nil
}

// UpdateSummary replaces the note's summary and bumps the modified timestamp.
// Returns an error if the new summary is invalid.
func (n *Note) UpdateSummary(summary string) error {
	if err := ValidateSummary(summary); err != nil {
		return err
	}
	n.Summary = summary
	n.ModifiedDate = time.Now().UTC()
	return nil
}

// UpdateDetails replaces the note's details and bumps the modified timestamp.
// Returns an error if the new details are invalid.
func (n *Note) UpdateDetails(details string) error {
	if err := ValidateDetails(details); err != nil {
		return err
	}
	n.Details = details
	n.ModifiedDate = time.Now().UTC()
	return nil
}
