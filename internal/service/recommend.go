// internal/service/recommend.go
package service

import (
	"context"

	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"
)

// candidatePoolSize bounds how many jobs are scored per request.
const candidatePoolSize = 50

type RecommendationService struct {
	users  *store.UserStore
	jobs   *store.JobStore
	index  JobSearchIndex
	logger logger.Logger
}

func NewRecommendationService(users *store.UserStore, jobs *store.JobStore, index JobSearchIndex, log logger.Logger) *RecommendationService {
	return &RecommendationService{
		users:  users,
		jobs:   jobs,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"service": "recommendations"}),
	}
}

// Recommend returns the seeker's top job matches. The candidate set comes
// from a more_like_this skill query against the search index; if the index
// is unavailable or the seeker has no skills on file, recent open jobs the
// seeker has not applied to stand in. Candidates are then ranked with the
// weighted heuristic in scoring.go.
func (s *RecommendationService) Recommend(ctx context.Context, seekerID string, limit int) ([]RecommendedJob, error) {
	if limit < 1 || limit > candidatePoolSize {
		limit = 10
	}

	user, err := s.users.GetByID(ctx, seekerID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateJobs(ctx, user)
	if err != nil {
		return nil, err
	}

	return rankJobs(user, candidates, limit), nil
}

func (s *RecommendationService) candidateJobs(ctx context.Context, user *models.User) ([]models.Job, error) {
	if len(user.Skills) > 0 {
		ids, err := s.index.Similar(ctx, user.Skills, user.Location, candidatePoolSize)
		if err != nil {
			s.logger.Warn("similar-jobs search failed, falling back to recent jobs", map[string]interface{}{
				"userId": user.ID,
				"error":  err.Error(),
			})
		} else if len(ids) > 0 {
			return s.jobs.ListByIDs(ctx, ids)
		}
	}

	return s.jobs.ListOpenExcludingApplied(ctx, user.ID, candidatePoolSize)
}
