package handler

import (
	"net/http"

	"kotoba-tutor/internal/middleware"
	"kotoba-tutor/internal/service"
)

// StatsHandler serves the learner dashboard figures
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats returns the caller's study statistics
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	stats, err := h.statsService.GetUserStats(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error":"Failed to fetch stats"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
