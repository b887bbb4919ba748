package service

import (
	"context"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/llm"
)

// Completer is the completion surface the services depend on.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
	Stream(ctx context.Context, req llm.Request) (llm.TextStream, error)
}

// ChatService streams tutoring responses from the completion provider.
type ChatService struct {
	llm   Completer
	model string
}

func NewChatService(completer Completer, model string) *ChatService {
	return &ChatService{
		llm:   completer,
		model: model,
	}
}

// Respond streams the tutor's reply to one student message. The caller owns
// the returned stream and must close it.
func (s *ChatService) Respond(ctx context.Context, message string, opts llm.ChatOptions) (llm.TextStream, error) {
	if message == "" || opts.Level == "" {
		return nil, domain.ErrInvalidInput
	}

	return s.llm.Stream(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: llm.ChatSystemPrompt(opts)},
			{Role: "user", Content: message},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
}
