package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"kotoba-tutor/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLessonRepo(t *testing.T) (*LessonRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewLessonRepository(db, NewTxManager(db)), mock, func() { db.Close() }
}

func TestLessonRepository_CreateWithProgress(t *testing.T) {
	t.Run("commits_lesson_and_progress_together", func(t *testing.T) {
		repo, mock, cleanup := newLessonRepo(t)
		defer cleanup()

		createdAt := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO lessons`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("lesson-1", createdAt))
		mock.ExpectQuery(`INSERT INTO progress`).
			WithArgs("user-1", "lesson-1", false, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow("progress-1", createdAt))
		mock.ExpectCommit()

		lesson := &domain.Lesson{
			UserID:        "user-1",
			Title:         "Particles (beginner)",
			Content:       "<section>...</section>",
			Level:         "beginner",
			Topic:         "Particles",
			Tags:          []string{},
			Quiz:          []domain.QuizQuestion{{Question: "q", Options: []string{"a"}, CorrectAnswer: "a"}},
			IsAIGenerated: true,
		}
		progress := &domain.Progress{UserID: "user-1"}

		err := repo.CreateWithProgress(context.Background(), lesson, progress)
		require.NoError(t, err)
		assert.Equal(t, "lesson-1", lesson.ID)
		assert.Equal(t, "progress-1", progress.ID)
		assert.Equal(t, "lesson-1", progress.LessonID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls_back_when_progress_insert_fails", func(t *testing.T) {
		repo, mock, cleanup := newLessonRepo(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO lessons`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("lesson-1", time.Now()))
		mock.ExpectQuery(`INSERT INTO progress`).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		lesson := &domain.Lesson{UserID: "user-1", Title: "t", Content: "c", Level: "beginner", Topic: "x"}
		progress := &domain.Progress{UserID: "user-1"}

		err := repo.CreateWithProgress(context.Background(), lesson, progress)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLessonRepository_GetByID(t *testing.T) {
	t.Run("found_with_quiz", func(t *testing.T) {
		repo, mock, cleanup := newLessonRepo(t)
		defer cleanup()

		quizJSON := `[{"question":"What is は?","options":["topic marker","verb"],"correctAnswer":"topic marker"}]`
		mock.ExpectQuery(`SELECT id, COALESCE\(user_id::text, ''\), title`).
			WithArgs("lesson-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "title", "description", "content", "level", "topic", "tags", "quiz", "is_ai_generated", "created_at",
			}).AddRow("lesson-1", "user-1", "Particles", "desc", "content", "beginner", "Particles", "{grammar}", quizJSON, true, time.Now()))

		lesson, err := repo.GetByID(context.Background(), "lesson-1")
		require.NoError(t, err)
		assert.Equal(t, "Particles", lesson.Title)
		require.Len(t, lesson.Quiz, 1)
		assert.Equal(t, "topic marker", lesson.Quiz[0].CorrectAnswer)
		assert.Equal(t, []string{"grammar"}, lesson.Tags)
	})

	t.Run("not_found", func(t *testing.T) {
		repo, mock, cleanup := newLessonRepo(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, COALESCE\(user_id::text, ''\), title`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "title", "description", "content", "level", "topic", "tags", "quiz", "is_ai_generated", "created_at",
			}))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrLessonNotFound)
	})
}

func TestLessonRepository_List_AppliesFilters(t *testing.T) {
	repo, mock, cleanup := newLessonRepo(t)
	defer cleanup()

	mock.ExpectQuery(`FROM lessons`).
		WithArgs("user-1", "beginner", "%particle%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "description", "content", "level", "topic", "tags", "quiz", "is_ai_generated", "created_at",
		}).AddRow("lesson-1", "", "Particles", "d", "c", "beginner", "Particles", "{}", "[]", false, time.Now()))

	lessons, err := repo.List(context.Background(), domain.LessonFilter{
		UserID: "user-1",
		Level:  "beginner",
		Search: "particle",
	})
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Particles", lessons[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_DeleteWithProgress(t *testing.T) {
	t.Run("deletes_both_in_one_tx", func(t *testing.T) {
		repo, mock, cleanup := newLessonRepo(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM progress`).
			WithArgs("lesson-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM lessons`).
			WithArgs("lesson-1", "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteWithProgress(context.Background(), "lesson-1", "user-1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not_owner_rolls_back", func(t *testing.T) {
		repo, mock, cleanup := newLessonRepo(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM progress`).
			WithArgs("lesson-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM lessons`).
			WithArgs("lesson-1", "intruder").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.DeleteWithProgress(context.Background(), "lesson-1", "intruder")
		assert.ErrorIs(t, err, domain.ErrLessonNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
