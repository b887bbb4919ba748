package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// User represents a registered learner. PasswordHash is never serialized.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Name             string    `json:"name"`
	NativeLanguage   string    `json:"nativeLanguage"`
	CompletedLessons int       `json:"completedLessons"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UserStats aggregates a learner's study figures for the dashboard.
type UserStats struct {
	CompletedLessons int `json:"completedLessons"`
	WordsLearned     int `json:"wordsLearned"`
	CurrentStreak    int `json:"currentStreak"`
	TotalMinutes     int `json:"totalMinutes"`
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
