package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrGenerationFailed = errors.New("lesson generation failed")
)

// QuizQuestion is a single multiple-choice question attached to a lesson.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// Lesson represents a study unit, either seeded or AI-generated for a user.
type Lesson struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId,omitempty"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Content       string         `json:"content"`
	Level         string         `json:"level"`
	Topic         string         `json:"topic"`
	Tags          []string       `json:"tags"`
	Quiz          []QuizQuestion `json:"quiz"`
	IsAIGenerated bool           `json:"isAiGenerated"`
	CreatedAt     time.Time      `json:"createdAt"`

	// Progress rows for the requesting user, populated on reads.
	Progress []*Progress `json:"progress,omitempty"`
}

// LessonFilter narrows lesson listings. Zero-value fields are ignored.
type LessonFilter struct {
	Level  string
	Topic  string
	Search string
	// UserID scopes AI-generated lessons to their owner; seeded lessons
	// are always visible.
	UserID string
}

// LessonRepository defines the interface for lesson data access.
// CreateWithProgress and DeleteWithProgress are atomic: either both the
// lesson and its progress rows change, or neither does.
type LessonRepository interface {
	CreateWithProgress(ctx context.Context, lesson *Lesson, progress *Progress) error
	GetByID(ctx context.Context, id string) (*Lesson, error)
	List(ctx context.Context, filter LessonFilter) ([]*Lesson, error)
	DeleteWithProgress(ctx context.Context, id, userID string) error
}
