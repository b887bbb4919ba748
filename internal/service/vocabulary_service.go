package service

import (
	"context"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/llm"
)

// VocabularyService manages the vocabulary browser and its AI helper.
type VocabularyService struct {
	vocabRepo domain.VocabularyRepository
	llm       Completer
	model     string
}

func NewVocabularyService(vocabRepo domain.VocabularyRepository, completer Completer, model string) *VocabularyService {
	return &VocabularyService{
		vocabRepo: vocabRepo,
		llm:       completer,
		model:     model,
	}
}

func (s *VocabularyService) Create(ctx context.Context, userID string, entry *domain.VocabularyEntry) (*domain.VocabularyEntry, error) {
	if entry.Word == "" {
		return nil, domain.ErrInvalidInput
	}
	entry.UserID = userID
	if entry.Meaning == nil {
		entry.Meaning = []string{}
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}

	if err := s.vocabRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *VocabularyService) Update(ctx context.Context, entry *domain.VocabularyEntry) (*domain.VocabularyEntry, error) {
	if entry.ID == "" || entry.Word == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := s.vocabRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *VocabularyService) Delete(ctx context.Context, id string) error {
	return s.vocabRepo.Delete(ctx, id)
}

func (s *VocabularyService) Get(ctx context.Context, id string) (*domain.VocabularyEntry, error) {
	return s.vocabRepo.GetByID(ctx, id)
}

func (s *VocabularyService) List(ctx context.Context, filter domain.VocabularyFilter) ([]*domain.VocabularyEntry, error) {
	return s.vocabRepo.List(ctx, filter)
}

// ExplainUsage streams AI-written usage help for a word, either example
// sentences or a full explanation depending on kind.
func (s *VocabularyService) ExplainUsage(ctx context.Context, kind, word, reading string) (llm.TextStream, error) {
	if word == "" {
		return nil, domain.ErrInvalidInput
	}
	if kind != llm.HelperExample && kind != llm.HelperExplanation {
		return nil, domain.ErrInvalidInput
	}

	return s.llm.Stream(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: llm.HelperSystemPrompt(kind)},
			{Role: "user", Content: llm.HelperUserPrompt(kind, word, reading)},
		},
		Temperature: 0.7,
	})
}
