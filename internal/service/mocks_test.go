package service

import (
	"context"
	"io"
	"time"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/llm"
)

// Mock repositories for testing

type mockUserRepository struct {
	users      map[string]*domain.User
	getByEmail func(ctx context.Context, email string) (*domain.User, error)
	getByID    func(ctx context.Context, id string) (*domain.User, error)
	create     func(ctx context.Context, user *domain.User) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.create != nil {
		return m.create(ctx, user)
	}
	if m.users == nil {
		m.users = make(map[string]*domain.User)
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmail != nil {
		return m.getByEmail(ctx, email)
	}
	user, ok := m.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type mockLessonRepository struct {
	createWithProgress func(ctx context.Context, lesson *domain.Lesson, progress *domain.Progress) error
	getByID            func(ctx context.Context, id string) (*domain.Lesson, error)
	list               func(ctx context.Context, filter domain.LessonFilter) ([]*domain.Lesson, error)
	deleteWithProgress func(ctx context.Context, id, userID string) error
}

func (m *mockLessonRepository) CreateWithProgress(ctx context.Context, lesson *domain.Lesson, progress *domain.Progress) error {
	if m.createWithProgress != nil {
		return m.createWithProgress(ctx, lesson, progress)
	}
	lesson.ID = "lesson-1"
	if progress != nil {
		progress.ID = "progress-1"
		progress.LessonID = lesson.ID
	}
	return nil
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id string) (*domain.Lesson, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return nil, domain.ErrLessonNotFound
}

func (m *mockLessonRepository) List(ctx context.Context, filter domain.LessonFilter) ([]*domain.Lesson, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, nil
}

func (m *mockLessonRepository) DeleteWithProgress(ctx context.Context, id, userID string) error {
	if m.deleteWithProgress != nil {
		return m.deleteWithProgress(ctx, id, userID)
	}
	return nil
}

type mockProgressRepository struct {
	getByLesson        func(ctx context.Context, lessonID string) ([]*domain.Progress, error)
	getByUserAndLesson func(ctx context.Context, userID, lessonID string) (*domain.Progress, error)
	listByUser         func(ctx context.Context, userID string) ([]*domain.Progress, error)
	recordAttempt      func(ctx context.Context, progress *domain.Progress) error
}

func (m *mockProgressRepository) GetByLesson(ctx context.Context, lessonID string) ([]*domain.Progress, error) {
	if m.getByLesson != nil {
		return m.getByLesson(ctx, lessonID)
	}
	return nil, nil
}

func (m *mockProgressRepository) GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*domain.Progress, error) {
	if m.getByUserAndLesson != nil {
		return m.getByUserAndLesson(ctx, userID, lessonID)
	}
	return nil, domain.ErrProgressNotFound
}

func (m *mockProgressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Progress, error) {
	if m.listByUser != nil {
		return m.listByUser(ctx, userID)
	}
	return nil, nil
}

func (m *mockProgressRepository) RecordAttempt(ctx context.Context, progress *domain.Progress) error {
	if m.recordAttempt != nil {
		return m.recordAttempt(ctx, progress)
	}
	progress.ID = "progress-1"
	progress.Attempts++
	return nil
}

type mockVocabularyRepository struct {
	create  func(ctx context.Context, entry *domain.VocabularyEntry) error
	update  func(ctx context.Context, entry *domain.VocabularyEntry) error
	delete  func(ctx context.Context, id string) error
	getByID func(ctx context.Context, id string) (*domain.VocabularyEntry, error)
	list    func(ctx context.Context, filter domain.VocabularyFilter) ([]*domain.VocabularyEntry, error)
}

func (m *mockVocabularyRepository) Create(ctx context.Context, entry *domain.VocabularyEntry) error {
	if m.create != nil {
		return m.create(ctx, entry)
	}
	entry.ID = "vocab-1"
	return nil
}

func (m *mockVocabularyRepository) Update(ctx context.Context, entry *domain.VocabularyEntry) error {
	if m.update != nil {
		return m.update(ctx, entry)
	}
	return nil
}

func (m *mockVocabularyRepository) Delete(ctx context.Context, id string) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return nil
}

func (m *mockVocabularyRepository) GetByID(ctx context.Context, id string) (*domain.VocabularyEntry, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return nil, domain.ErrVocabularyNotFound
}

func (m *mockVocabularyRepository) List(ctx context.Context, filter domain.VocabularyFilter) ([]*domain.VocabularyEntry, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, nil
}

type mockCompleter struct {
	complete func(ctx context.Context, req llm.Request) (string, error)
	stream   func(ctx context.Context, req llm.Request) (llm.TextStream, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	if m.complete != nil {
		return m.complete(ctx, req)
	}
	return "", nil
}

func (m *mockCompleter) Stream(ctx context.Context, req llm.Request) (llm.TextStream, error) {
	if m.stream != nil {
		return m.stream(ctx, req)
	}
	return &fakeStream{}, nil
}

// fakeStream yields its fragments in order, then io.EOF.
type fakeStream struct {
	fragments []string
	pos       int
	closed    bool
}

func (f *fakeStream) Recv() (string, error) {
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
