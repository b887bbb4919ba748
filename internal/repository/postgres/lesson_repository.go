package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"kotoba-tutor/internal/domain"
)

// LessonRepository implements domain.LessonRepository for PostgreSQL
type LessonRepository struct {
	db *sql.DB
	tm *TxManager
}

// NewLessonRepository creates a new PostgreSQL lesson repository
func NewLessonRepository(db *sql.DB, tm *TxManager) *LessonRepository {
	return &LessonRepository{db: db, tm: tm}
}

// CreateWithProgress inserts a lesson and its initial progress row in a
// single transaction. A quiz that cannot be generated never leaves a lesson
// behind, and a lesson never exists without a progress row for its owner.
func (r *LessonRepository) CreateWithProgress(ctx context.Context, lesson *domain.Lesson, progress *domain.Progress) error {
	quiz, err := json.Marshal(lesson.Quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}

	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO lessons (user_id, title, description, content, level, topic, tags, quiz, is_ai_generated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`
		err := tx.QueryRowContext(ctx, query,
			nullableID(lesson.UserID),
			lesson.Title,
			lesson.Description,
			lesson.Content,
			lesson.Level,
			lesson.Topic,
			pq.Array(lesson.Tags),
			quiz,
			lesson.IsAIGenerated,
		).Scan(&lesson.ID, &lesson.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert lesson: %w", err)
		}

		if progress == nil {
			return nil
		}

		progress.LessonID = lesson.ID
		progressQuery := `
			INSERT INTO progress (user_id, lesson_id, completed, attempts)
			VALUES ($1, $2, $3, $4)
			RETURNING id, updated_at
		`
		err = tx.QueryRowContext(ctx, progressQuery,
			progress.UserID,
			progress.LessonID,
			progress.Completed,
			progress.Attempts,
		).Scan(&progress.ID, &progress.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert progress: %w", err)
		}

		return nil
	})
}

// GetByID retrieves a lesson by ID
func (r *LessonRepository) GetByID(ctx context.Context, id string) (*domain.Lesson, error) {
	query := `
		SELECT id, COALESCE(user_id::text, ''), title, description, content, level, topic, tags, quiz, is_ai_generated, created_at
		FROM lessons
		WHERE id = $1
	`
	return scanLesson(r.db.QueryRowContext(ctx, query, id))
}

// List retrieves lessons matching the filter, newest first. Seeded lessons
// are visible to everyone; AI-generated lessons only to their owner.
func (r *LessonRepository) List(ctx context.Context, filter domain.LessonFilter) ([]*domain.Lesson, error) {
	conditions := []string{"(user_id IS NULL OR user_id = $1)"}
	args := []interface{}{nullableID(filter.UserID)}

	if filter.Level != "" {
		args = append(args, filter.Level)
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)))
	}
	if filter.Topic != "" {
		args = append(args, filter.Topic)
		conditions = append(conditions, fmt.Sprintf("topic = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, COALESCE(user_id::text, ''), title, description, content, level, topic, tags, quiz, is_ai_generated, created_at
		FROM lessons
		WHERE %s
		ORDER BY created_at DESC
	`, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []*domain.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// DeleteWithProgress removes a lesson owned by userID together with all its
// progress rows in a single transaction.
func (r *LessonRepository) DeleteWithProgress(ctx context.Context, id, userID string) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM progress WHERE lesson_id = $1`, id); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("delete lesson: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrLessonNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLesson(row rowScanner) (*domain.Lesson, error) {
	lesson := &domain.Lesson{}
	var quiz []byte

	err := row.Scan(
		&lesson.ID,
		&lesson.UserID,
		&lesson.Title,
		&lesson.Description,
		&lesson.Content,
		&lesson.Level,
		&lesson.Topic,
		pq.Array(&lesson.Tags),
		&quiz,
		&lesson.IsAIGenerated,
		&lesson.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(quiz) > 0 {
		if err := json.Unmarshal(quiz, &lesson.Quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
	}
	return lesson, nil
}

// nullableID maps an empty string to SQL NULL for optional UUID columns.
func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}
