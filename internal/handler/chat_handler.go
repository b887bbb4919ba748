package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/llm"
	"kotoba-tutor/internal/service"
)

// ChatHandler streams tutoring conversation replies
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents one student message
type ChatRequest struct {
	Message            string `json:"message"`
	Level              string `json:"level"`
	UserLanguage       string `json:"userLanguage,omitempty"`
	CorrectionsEnabled *bool  `json:"correctionsEnabled,omitempty"`
}

// Chat relays the tutor's streamed reply as a plain-text body
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Message == "" || req.Level == "" {
		http.Error(w, `{"error":"Message and level are required"}`, http.StatusBadRequest)
		return
	}

	// Corrections default to on unless explicitly disabled
	corrections := true
	if req.CorrectionsEnabled != nil {
		corrections = *req.CorrectionsEnabled
	}

	stream, err := h.chatService.Respond(r.Context(), req.Message, llm.ChatOptions{
		Level:              req.Level,
		UserLanguage:       req.UserLanguage,
		CorrectionsEnabled: corrections,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, `{"error":"Message and level are required"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"Chat service unavailable"}`, http.StatusInternalServerError)
		return
	}

	streamText(w, r, stream, "chat")
}
