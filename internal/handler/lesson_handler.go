package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/llm"
	"kotoba-tutor/internal/middleware"
	"kotoba-tutor/internal/service"
)

// LessonHandler handles lesson browsing, AI generation, progress, and deletion
type LessonHandler struct {
	lessonService *service.LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessonService *service.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

// GenerateRequest represents a lesson generation request
type GenerateRequest struct {
	Topic               string `json:"topic"`
	Level               string `json:"level"`
	InstructionLanguage string `json:"instructionLanguage,omitempty"`
	Complexity          string `json:"complexity,omitempty"`
}

// ProgressRequest represents a quiz attempt result
type ProgressRequest struct {
	Completed bool `json:"completed"`
	Score     *int `json:"score,omitempty"`
}

// List returns lessons matching the query filters. Anonymous callers see
// only seeded lessons; logged-in callers additionally see their own
// AI-generated ones.
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	filter := domain.LessonFilter{
		Level:  r.URL.Query().Get("level"),
		Topic:  r.URL.Query().Get("topic"),
		Search: r.URL.Query().Get("search"),
	}

	lessons, err := h.lessonService.List(r.Context(), userID, filter)
	if err != nil {
		http.Error(w, `{"error":"Failed to fetch lessons"}`, http.StatusInternalServerError)
		return
	}
	if lessons == nil {
		lessons = []*domain.Lesson{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"lessons": lessons})
}

// Get returns one lesson with the caller's progress attached
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	lesson, err := h.lessonService.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrLessonNotFound) {
			http.Error(w, `{"error":"Lesson not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"Failed to fetch lesson"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, lesson)
}

// Generate produces an AI lesson with its quiz and stores both atomically
func (h *LessonHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	if req.Topic == "" {
		fields["topic"] = "required"
	}
	if req.Level == "" {
		fields["level"] = "required"
	}
	if len(fields) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Missing required fields",
			"fields": fields,
		})
		return
	}

	lesson, err := h.lessonService.Generate(r.Context(), userID, llm.LessonOptions{
		Topic:               req.Topic,
		Level:               req.Level,
		InstructionLanguage: req.InstructionLanguage,
		Complexity:          req.Complexity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			http.Error(w, `{"error":"Lesson generation failed"}`, http.StatusInternalServerError)
			return
		}
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"lessonId": lesson.ID,
		"message":  "Lesson generated successfully",
	})
}

// UpdateProgress records a quiz attempt on a lesson
func (h *LessonHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	var req ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	progress, err := h.lessonService.RecordProgress(r.Context(), userID, chi.URLParam(r, "id"), req.Completed, req.Score)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, `{"error":"Invalid progress update"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"Failed to update progress"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// Delete removes a lesson the caller owns together with its progress
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	err := h.lessonService.Delete(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrLessonNotFound) {
			http.Error(w, `{"error":"Lesson not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"Failed to delete lesson"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
