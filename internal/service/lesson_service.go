package service

import (
	"context"
	"fmt"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/llm"
)

// LessonService generates and manages lessons and their quiz progress.
type LessonService struct {
	lessonRepo   domain.LessonRepository
	progressRepo domain.ProgressRepository
	llm          Completer
	model        string
}

func NewLessonService(lessonRepo domain.LessonRepository, progressRepo domain.ProgressRepository, completer Completer, model string) *LessonService {
	return &LessonService{
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		llm:          completer,
		model:        model,
	}
}

// Generate produces a lesson and its quiz from the completion provider and
// persists both together with the owner's initial progress row. If any
// generation step fails, nothing is stored.
func (s *LessonService) Generate(ctx context.Context, userID string, opts llm.LessonOptions) (*domain.Lesson, error) {
	if opts.Topic == "" || opts.Level == "" {
		return nil, domain.ErrInvalidInput
	}

	content, err := s.llm.Complete(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: llm.LessonSystemPrompt(opts)},
			{Role: "user", Content: llm.LessonUserPrompt(opts)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: lesson content: %v", domain.ErrGenerationFailed, err)
	}

	quizRaw, err := s.llm.Complete(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: llm.QuizSystemPrompt(opts)},
			{Role: "user", Content: llm.QuizUserPrompt(opts, content)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: quiz: %v", domain.ErrGenerationFailed, err)
	}

	quiz, err := llm.ParseQuiz(quizRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	complexity := opts.Complexity
	if complexity == "" {
		complexity = "balanced"
	}

	lesson := &domain.Lesson{
		UserID:        userID,
		Title:         fmt.Sprintf("%s (%s)", opts.Topic, opts.Level),
		Description:   fmt.Sprintf("AI-generated %s lesson about %s for %s level students.", complexity, opts.Topic, opts.Level),
		Content:       content,
		Level:         opts.Level,
		Topic:         opts.Topic,
		Tags:          []string{},
		Quiz:          quiz,
		IsAIGenerated: true,
	}
	progress := &domain.Progress{UserID: userID}

	if err := s.lessonRepo.CreateWithProgress(ctx, lesson, progress); err != nil {
		return nil, err
	}

	lesson.Progress = []*domain.Progress{progress}
	return lesson, nil
}

// List returns the lessons visible to userID with their progress attached.
func (s *LessonService) List(ctx context.Context, userID string, filter domain.LessonFilter) ([]*domain.Lesson, error) {
	filter.UserID = userID

	lessons, err := s.lessonRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[string][]*domain.Progress, len(progress))
	for _, p := range progress {
		byLesson[p.LessonID] = append(byLesson[p.LessonID], p)
	}
	for _, lesson := range lessons {
		lesson.Progress = byLesson[lesson.ID]
	}

	return lessons, nil
}

// Get returns one lesson with the requesting user's progress. AI-generated
// lessons belonging to another user are indistinguishable from missing ones.
func (s *LessonService) Get(ctx context.Context, id, userID string) (*domain.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.IsAIGenerated && lesson.UserID != userID {
		return nil, domain.ErrLessonNotFound
	}

	progress, err := s.progressRepo.GetByUserAndLesson(ctx, userID, id)
	if err == nil {
		lesson.Progress = []*domain.Progress{progress}
	} else if err != domain.ErrProgressNotFound {
		return nil, err
	}

	return lesson, nil
}

// Delete removes a lesson owned by userID along with all its progress rows.
func (s *LessonService) Delete(ctx context.Context, id, userID string) error {
	return s.lessonRepo.DeleteWithProgress(ctx, id, userID)
}

// RecordProgress registers one quiz attempt on a lesson.
func (s *LessonService) RecordProgress(ctx context.Context, userID, lessonID string, completed bool, score *int) (*domain.Progress, error) {
	if lessonID == "" {
		return nil, domain.ErrInvalidInput
	}

	progress := &domain.Progress{
		UserID:    userID,
		LessonID:  lessonID,
		Completed: completed,
		Score:     score,
	}
	if err := s.progressRepo.RecordAttempt(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}
