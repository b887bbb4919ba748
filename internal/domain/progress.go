package domain

import (
	"context"
	"errors"
	"time"
)

var ErrProgressNotFound = errors.New("progress not found")

// Progress tracks one user's attempts at one lesson.
type Progress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	LessonID    string     `json:"lessonId"`
	Completed   bool       `json:"completed"`
	Score       *int       `json:"score"`
	Attempts    int        `json:"attempts"`
	CompletedAt *time.Time `json:"completedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProgressRepository defines the interface for progress data access.
// RecordAttempt upserts the row, increments attempts, and bumps the user's
// completed-lessons counter in the same transaction when the lesson is
// newly completed.
type ProgressRepository interface {
	GetByLesson(ctx context.Context, lessonID string) ([]*Progress, error)
	GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*Progress, error)
	ListByUser(ctx context.Context, userID string) ([]*Progress, error)
	RecordAttempt(ctx context.Context, progress *Progress) error
}
