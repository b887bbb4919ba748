package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"kotoba-tutor/internal/domain"
)

// quizSize is the number of questions every generated quiz must contain.
const quizSize = 5

// ParseQuiz normalizes a model-produced quiz payload into question structs.
// Models wrap the payload inconsistently: sometimes a bare array, sometimes
// an object keyed "questions" or "quiz", often inside markdown code fences.
// All shapes are accepted; anything else is a generation failure.
func ParseQuiz(raw string) ([]domain.QuizQuestion, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var questions []domain.QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		var wrapped struct {
			Questions []domain.QuizQuestion `json:"questions"`
			Quiz      []domain.QuizQuestion `json:"quiz"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return nil, fmt.Errorf("quiz is not valid JSON: %w", err)
		}
		switch {
		case len(wrapped.Questions) > 0:
			questions = wrapped.Questions
		case len(wrapped.Quiz) > 0:
			questions = wrapped.Quiz
		}
	}

	if len(questions) != quizSize {
		return nil, fmt.Errorf("expected %d quiz questions, got %d", quizSize, len(questions))
	}

	for i, q := range questions {
		if q.Question == "" || len(q.Options) < 2 || q.CorrectAnswer == "" {
			return nil, fmt.Errorf("quiz question %d is incomplete", i)
		}
	}

	return questions, nil
}
