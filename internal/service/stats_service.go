package service

import (
	"context"
	"time"

	"kotoba-tutor/internal/domain"
)

// studyMinutesPerAttempt is the estimate used for total study time; quiz
// attempts are the only study activity the store records.
const studyMinutesPerAttempt = 10

// StatsService aggregates a learner's study figures.
type StatsService struct {
	userRepo     domain.UserRepository
	progressRepo domain.ProgressRepository
	vocabRepo    domain.VocabularyRepository
	now          func() time.Time
}

func NewStatsService(userRepo domain.UserRepository, progressRepo domain.ProgressRepository, vocabRepo domain.VocabularyRepository) *StatsService {
	return &StatsService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		vocabRepo:    vocabRepo,
		now:          time.Now,
	}
}

// GetUserStats computes the dashboard figures from progress and vocabulary
// records.
func (s *StatsService) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	progress, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.UserStats{}
	var completionDays []time.Time
	for _, p := range progress {
		stats.TotalMinutes += p.Attempts * studyMinutesPerAttempt
		if p.Completed {
			stats.CompletedLessons++
			if p.CompletedAt != nil {
				completionDays = append(completionDays, *p.CompletedAt)
			}
		}
	}
	stats.CurrentStreak = currentStreak(completionDays, s.now())

	entries, err := s.vocabRepo.List(ctx, domain.VocabularyFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	stats.WordsLearned = len(entries)

	return stats, nil
}

// currentStreak counts consecutive calendar days with at least one lesson
// completion, ending today or yesterday. A learner who completed something
// yesterday but not yet today still has a live streak.
func currentStreak(completions []time.Time, now time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	days := make(map[time.Time]bool, len(completions))
	for _, c := range completions {
		y, m, d := c.Date()
		days[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)] = true
	}

	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if !days[day] {
		day = day.AddDate(0, 0, -1)
		if !days[day] {
			return 0
		}
	}

	streak := 0
	for days[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
