package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/middleware"
	"kotoba-tutor/internal/service"
)

// VocabularyHandler handles the vocabulary browser and its AI helper
type VocabularyHandler struct {
	vocabService *service.VocabularyService
}

// NewVocabularyHandler creates a new vocabulary handler
func NewVocabularyHandler(vocabService *service.VocabularyService) *VocabularyHandler {
	return &VocabularyHandler{vocabService: vocabService}
}

// HelperRequest asks for AI usage help on a word
type HelperRequest struct {
	Word    string `json:"word"`
	Type    string `json:"type"`
	Reading string `json:"reading,omitempty"`
}

// List returns vocabulary entries matching the query filters
func (h *VocabularyHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.VocabularyFilter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
	}
	if level := r.URL.Query().Get("jlptLevel"); level != "" && level != "all" {
		filter.JLPTLevel = level
	}

	entries, err := h.vocabService.List(r.Context(), filter)
	if err != nil {
		http.Error(w, `{"error":"Failed to fetch vocabulary"}`, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*domain.VocabularyEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// Get returns one vocabulary entry with its examples
func (h *VocabularyHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.vocabService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrVocabularyNotFound) {
			http.Error(w, `{"error":"Vocabulary entry not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"Failed to fetch vocabulary"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Create adds a vocabulary entry owned by the caller
func (h *VocabularyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	var entry domain.VocabularyEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	created, err := h.vocabService.Create(r.Context(), userID, &entry)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, `{"error":"Word is required"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"Failed to create vocabulary"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Update rewrites a vocabulary entry, replacing its examples wholesale
func (h *VocabularyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var entry domain.VocabularyEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	entry.ID = chi.URLParam(r, "id")

	updated, err := h.vocabService.Update(r.Context(), &entry)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVocabularyNotFound):
			http.Error(w, `{"error":"Vocabulary entry not found"}`, http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidInput):
			http.Error(w, `{"error":"Word is required"}`, http.StatusBadRequest)
		default:
			http.Error(w, `{"error":"Failed to update vocabulary"}`, http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a vocabulary entry and its examples
func (h *VocabularyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.vocabService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrVocabularyNotFound) {
			http.Error(w, `{"error":"Vocabulary entry not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"Failed to delete vocabulary"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AIHelper streams AI-written usage help for a word as plain text
func (h *VocabularyHandler) AIHelper(w http.ResponseWriter, r *http.Request) {
	var req HelperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Word == "" || req.Type == "" {
		http.Error(w, `{"error":"Word and type are required"}`, http.StatusBadRequest)
		return
	}

	stream, err := h.vocabService.ExplainUsage(r.Context(), req.Type, req.Word, req.Reading)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, `{"error":"Word and type are required"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"AI service unavailable"}`, http.StatusInternalServerError)
		return
	}

	streamText(w, r, stream, "vocab_helper")
}
