package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"kotoba-tutor/internal/domain"
)

// VocabularyRepository implements domain.VocabularyRepository for PostgreSQL
type VocabularyRepository struct {
	db *sql.DB
	tm *TxManager
}

// NewVocabularyRepository creates a new PostgreSQL vocabulary repository
func NewVocabularyRepository(db *sql.DB, tm *TxManager) *VocabularyRepository {
	return &VocabularyRepository{db: db, tm: tm}
}

// Create inserts a vocabulary entry together with its examples
func (r *VocabularyRepository) Create(ctx context.Context, entry *domain.VocabularyEntry) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO vocabulary (user_id, word, reading, meaning, jlpt_level, tags, commonness)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		err := tx.QueryRowContext(ctx, query,
			nullableID(entry.UserID),
			entry.Word,
			entry.Reading,
			pq.Array(entry.Meaning),
			entry.JLPTLevel,
			pq.Array(entry.Tags),
			entry.Commonness,
		).Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert vocabulary: %w", err)
		}

		return insertExamples(ctx, tx, entry)
	})
}

// Update rewrites a vocabulary entry. Examples are replaced wholesale: the
// submitted set becomes the entry's examples.
func (r *VocabularyRepository) Update(ctx context.Context, entry *domain.VocabularyEntry) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE vocabulary
			SET word = $2, reading = $3, meaning = $4, jlpt_level = $5, tags = $6, commonness = $7
			WHERE id = $1
		`
		result, err := tx.ExecContext(ctx, query,
			entry.ID,
			entry.Word,
			entry.Reading,
			pq.Array(entry.Meaning),
			entry.JLPTLevel,
			pq.Array(entry.Tags),
			entry.Commonness,
		)
		if err != nil {
			return fmt.Errorf("update vocabulary: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrVocabularyNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM examples WHERE vocabulary_id = $1`, entry.ID); err != nil {
			return fmt.Errorf("delete examples: %w", err)
		}

		return insertExamples(ctx, tx, entry)
	})
}

// Delete removes a vocabulary entry and its examples
func (r *VocabularyRepository) Delete(ctx context.Context, id string) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM examples WHERE vocabulary_id = $1`, id); err != nil {
			return fmt.Errorf("delete examples: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM vocabulary WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete vocabulary: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrVocabularyNotFound
		}
		return nil
	})
}

// GetByID retrieves a vocabulary entry with its examples
func (r *VocabularyRepository) GetByID(ctx context.Context, id string) (*domain.VocabularyEntry, error) {
	query := `
		SELECT id, COALESCE(user_id::text, ''), word, reading, meaning, jlpt_level, tags, commonness, created_at
		FROM vocabulary
		WHERE id = $1
	`
	entry := &domain.VocabularyEntry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Word,
		&entry.Reading,
		pq.Array(&entry.Meaning),
		&entry.JLPTLevel,
		pq.Array(&entry.Tags),
		&entry.Commonness,
		&entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrVocabularyNotFound
	}
	if err != nil {
		return nil, err
	}

	examples, err := r.loadExamples(ctx, []string{entry.ID})
	if err != nil {
		return nil, err
	}
	entry.Examples = examples[entry.ID]
	return entry, nil
}

// List retrieves vocabulary entries matching the filter, most common first
func (r *VocabularyRepository) List(ctx context.Context, filter domain.VocabularyFilter) ([]*domain.VocabularyEntry, error) {
	conditions := []string{"TRUE"}
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(word ILIKE $%d OR reading ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(meaning) m WHERE m ILIKE $%d))", n, n, n))
	}
	if filter.JLPTLevel != "" {
		args = append(args, filter.JLPTLevel)
		conditions = append(conditions, fmt.Sprintf("jlpt_level = $%d", len(args)))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, COALESCE(user_id::text, ''), word, reading, meaning, jlpt_level, tags, commonness, created_at
		FROM vocabulary
		WHERE %s
		ORDER BY commonness DESC, word ASC
	`, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.VocabularyEntry
	var ids []string
	for rows.Next() {
		entry := &domain.VocabularyEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Word,
			&entry.Reading,
			pq.Array(&entry.Meaning),
			&entry.JLPTLevel,
			pq.Array(&entry.Tags),
			&entry.Commonness,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		ids = append(ids, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return entries, nil
	}

	examples, err := r.loadExamples(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		entry.Examples = examples[entry.ID]
	}
	return entries, nil
}

func (r *VocabularyRepository) loadExamples(ctx context.Context, vocabularyIDs []string) (map[string][]domain.Example, error) {
	query := `
		SELECT vocabulary_id, id, sentence, translation, note
		FROM examples
		WHERE vocabulary_id = ANY($1)
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(vocabularyIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.Example)
	for rows.Next() {
		var vocabID string
		var example domain.Example
		if err := rows.Scan(&vocabID, &example.ID, &example.Sentence, &example.Translation, &example.Note); err != nil {
			return nil, err
		}
		result[vocabID] = append(result[vocabID], example)
	}
	return result, rows.Err()
}

func insertExamples(ctx context.Context, tx *sql.Tx, entry *domain.VocabularyEntry) error {
	for i := range entry.Examples {
		example := &entry.Examples[i]
		err := tx.QueryRowContext(ctx,
			`INSERT INTO examples (vocabulary_id, sentence, translation, note) VALUES ($1, $2, $3, $4) RETURNING id`,
			entry.ID, example.Sentence, example.Translation, example.Note,
		).Scan(&example.ID)
		if err != nil {
			return fmt.Errorf("insert example: %w", err)
		}
	}
	return nil
}
