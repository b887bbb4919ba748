package handler

import (
	"context"
	"errors"
	"io"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/llm"
)

// Mock repositories and completion client for testing. Handlers are
// exercised through real services wired to these mocks.

type mockUserRepository struct {
	createFunc     func(ctx context.Context, user *domain.User) error
	getByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

type mockLessonRepository struct {
	createFunc func(ctx context.Context, lesson *domain.Lesson, progress *domain.Progress) error
	getFunc    func(ctx context.Context, id string) (*domain.Lesson, error)
	listFunc   func(ctx context.Context, filter domain.LessonFilter) ([]*domain.Lesson, error)
	deleteFunc func(ctx context.Context, id, userID string) error
}

func (m *mockLessonRepository) CreateWithProgress(ctx context.Context, lesson *domain.Lesson, progress *domain.Progress) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, lesson, progress)
	}
	return errors.New("not implemented")
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id string) (*domain.Lesson, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLessonRepository) List(ctx context.Context, filter domain.LessonFilter) ([]*domain.Lesson, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLessonRepository) DeleteWithProgress(ctx context.Context, id, userID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return errors.New("not implemented")
}

type mockProgressRepository struct {
	getByLessonFunc        func(ctx context.Context, lessonID string) ([]*domain.Progress, error)
	getByUserAndLessonFunc func(ctx context.Context, userID, lessonID string) (*domain.Progress, error)
	listByUserFunc         func(ctx context.Context, userID string) ([]*domain.Progress, error)
	recordAttemptFunc      func(ctx context.Context, progress *domain.Progress) error
}

func (m *mockProgressRepository) GetByLesson(ctx context.Context, lessonID string) ([]*domain.Progress, error) {
	if m.getByLessonFunc != nil {
		return m.getByLessonFunc(ctx, lessonID)
	}
	return nil, nil
}

func (m *mockProgressRepository) GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*domain.Progress, error) {
	if m.getByUserAndLessonFunc != nil {
		return m.getByUserAndLessonFunc(ctx, userID, lessonID)
	}
	return nil, domain.ErrProgressNotFound
}

func (m *mockProgressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Progress, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockProgressRepository) RecordAttempt(ctx context.Context, progress *domain.Progress) error {
	if m.recordAttemptFunc != nil {
		return m.recordAttemptFunc(ctx, progress)
	}
	return errors.New("not implemented")
}

type mockVocabularyRepository struct {
	createFunc func(ctx context.Context, entry *domain.VocabularyEntry) error
	updateFunc func(ctx context.Context, entry *domain.VocabularyEntry) error
	deleteFunc func(ctx context.Context, id string) error
	getFunc    func(ctx context.Context, id string) (*domain.VocabularyEntry, error)
	listFunc   func(ctx context.Context, filter domain.VocabularyFilter) ([]*domain.VocabularyEntry, error)
}

func (m *mockVocabularyRepository) Create(ctx context.Context, entry *domain.VocabularyEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	return errors.New("not implemented")
}

func (m *mockVocabularyRepository) Update(ctx context.Context, entry *domain.VocabularyEntry) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, entry)
	}
	return errors.New("not implemented")
}

func (m *mockVocabularyRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockVocabularyRepository) GetByID(ctx context.Context, id string) (*domain.VocabularyEntry, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockVocabularyRepository) List(ctx context.Context, filter domain.VocabularyFilter) ([]*domain.VocabularyEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

type mockCompleter struct {
	completeFunc func(ctx context.Context, req llm.Request) (string, error)
	streamFunc   func(ctx context.Context, req llm.Request) (llm.TextStream, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return "", errors.New("not implemented")
}

func (m *mockCompleter) Stream(ctx context.Context, req llm.Request) (llm.TextStream, error) {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

// fakeStream yields fragments in order then io.EOF; failAfter >= 0 injects a
// mid-stream error once that many fragments were delivered.
type fakeStream struct {
	fragments []string
	failAfter int
	pos       int
	closed    bool
}

func newFakeStream(fragments ...string) *fakeStream {
	return &fakeStream{fragments: fragments, failAfter: -1}
}

func (f *fakeStream) Recv() (string, error) {
	if f.failAfter >= 0 && f.pos >= f.failAfter {
		return "", errors.New("upstream connection reset")
	}
	if f.pos >= len(f.fragments) {
		return "", io.EOF
	}
	fragment := f.fragments[f.pos]
	f.pos++
	return fragment, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}
