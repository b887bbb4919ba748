package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"kotoba-tutor/internal/domain"
)

// ProgressRepository implements domain.ProgressRepository for PostgreSQL
type ProgressRepository struct {
	db *sql.DB
	tm *TxManager
}

// NewProgressRepository creates a new PostgreSQL progress repository
func NewProgressRepository(db *sql.DB, tm *TxManager) *ProgressRepository {
	return &ProgressRepository{db: db, tm: tm}
}

const progressColumns = `id, user_id, lesson_id, completed, score, attempts, completed_at, updated_at`

// GetByLesson retrieves all progress rows for a lesson
func (r *ProgressRepository) GetByLesson(ctx context.Context, lessonID string) ([]*domain.Progress, error) {
	query := fmt.Sprintf(`SELECT %s FROM progress WHERE lesson_id = $1`, progressColumns)

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProgress(rows)
}

// GetByUserAndLesson retrieves one user's progress on one lesson
func (r *ProgressRepository) GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*domain.Progress, error) {
	query := fmt.Sprintf(`SELECT %s FROM progress WHERE user_id = $1 AND lesson_id = $2`, progressColumns)

	progress := &domain.Progress{}
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(
		&progress.ID,
		&progress.UserID,
		&progress.LessonID,
		&progress.Completed,
		&progress.Score,
		&progress.Attempts,
		&progress.CompletedAt,
		&progress.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProgressNotFound
	}
	return progress, err
}

// ListByUser retrieves all progress rows for a user
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Progress, error) {
	query := fmt.Sprintf(`SELECT %s FROM progress WHERE user_id = $1 ORDER BY updated_at DESC`, progressColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProgress(rows)
}

// RecordAttempt upserts the user's progress on a lesson. Attempts always
// increment; a lesson never transitions back from completed. When the
// attempt completes the lesson for the first time, the user's
// completed-lessons counter is bumped in the same transaction.
func (r *ProgressRepository) RecordAttempt(ctx context.Context, progress *domain.Progress) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		var wasCompleted bool
		err := tx.QueryRowContext(ctx,
			`SELECT completed FROM progress WHERE user_id = $1 AND lesson_id = $2 FOR UPDATE`,
			progress.UserID, progress.LessonID,
		).Scan(&wasCompleted)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("lock progress: %w", err)
		}

		query := `
			INSERT INTO progress (user_id, lesson_id, completed, score, attempts, completed_at, updated_at)
			VALUES ($1, $2, $3, $4, 1, CASE WHEN $3 THEN NOW() END, NOW())
			ON CONFLICT (user_id, lesson_id) DO UPDATE SET
				completed = progress.completed OR EXCLUDED.completed,
				score = EXCLUDED.score,
				attempts = progress.attempts + 1,
				completed_at = COALESCE(progress.completed_at, EXCLUDED.completed_at),
				updated_at = NOW()
			RETURNING id, completed, attempts, completed_at, updated_at
		`
		err = tx.QueryRowContext(ctx, query,
			progress.UserID,
			progress.LessonID,
			progress.Completed,
			progress.Score,
		).Scan(
			&progress.ID,
			&progress.Completed,
			&progress.Attempts,
			&progress.CompletedAt,
			&progress.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		if progress.Completed && !wasCompleted {
			_, err := tx.ExecContext(ctx,
				`UPDATE users SET completed_lessons = completed_lessons + 1 WHERE id = $1`,
				progress.UserID,
			)
			if err != nil {
				return fmt.Errorf("update completed lessons: %w", err)
			}
		}

		return nil
	})
}

func collectProgress(rows *sql.Rows) ([]*domain.Progress, error) {
	var result []*domain.Progress
	for rows.Next() {
		progress := &domain.Progress{}
		err := rows.Scan(
			&progress.ID,
			&progress.UserID,
			&progress.LessonID,
			&progress.Completed,
			&progress.Score,
			&progress.Attempts,
			&progress.CompletedAt,
			&progress.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, progress)
	}
	return result, rows.Err()
}
