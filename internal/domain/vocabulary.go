package domain

import (
	"context"
	"errors"
	"time"
)

var ErrVocabularyNotFound = errors.New("vocabulary entry not found")

// Example is a usage sentence attached to a vocabulary entry.
type Example struct {
	ID          string `json:"id"`
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
	Note        string `json:"note,omitempty"`
}

// VocabularyEntry represents a word in the vocabulary browser. JLPTLevel is
// an opaque proficiency tag (N5..N1).
type VocabularyEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	Word       string    `json:"word"`
	Reading    string    `json:"reading"`
	Meaning    []string  `json:"meaning"`
	JLPTLevel  string    `json:"jlptLevel"`
	Tags       []string  `json:"tags"`
	Commonness int       `json:"commonness"`
	Examples   []Example `json:"examples"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VocabularyFilter narrows vocabulary listings. Zero-value fields are ignored.
type VocabularyFilter struct {
	// Search matches against word, reading, and meanings.
	Search    string
	JLPTLevel string
	Tag       string
	// UserID restricts results to entries owned by that user.
	UserID string
}

// VocabularyRepository defines the interface for vocabulary data access.
// Create, Update, and Delete keep the entry and its examples consistent by
// running inside a single transaction.
type VocabularyRepository interface {
	Create(ctx context.Context, entry *VocabularyEntry) error
	Update(ctx context.Context, entry *VocabularyEntry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*VocabularyEntry, error)
	List(ctx context.Context, filter VocabularyFilter) ([]*VocabularyEntry, error)
}
