// internal/service/analysis.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/common/metrics"
	"jobmate-backend/internal/mlclient"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"
)

// MLAnalyzer is the ML scoring surface. Satisfied by mlclient.Client.
type MLAnalyzer interface {
	ExplainMatch(ctx context.Context, req *mlclient.ExplainMatchRequest) (json.RawMessage, error)
	ATSScore(ctx context.Context, req *mlclient.ATSScoreRequest) (json.RawMessage, error)
	PredictCareer(ctx context.Context, req *mlclient.PredictCareerRequest) (json.RawMessage, error)
}

// AnalysisService proxies scoring requests to the ML service behind the
// TTL cache in ml_analyses. A fresh cached row short-circuits the call;
// otherwise the service is invoked and the result upserted.
type AnalysisService struct {
	analyses     *store.AnalysisStore
	users        *store.UserStore
	jobs         *store.JobStore
	applications *store.ApplicationStore
	ml           MLAnalyzer
	ttl          time.Duration
	logger       logger.Logger
}

func NewAnalysisService(analyses *store.AnalysisStore, users *store.UserStore, jobs *store.JobStore, applications *store.ApplicationStore, ml MLAnalyzer, ttl time.Duration, log logger.Logger) *AnalysisService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AnalysisService{
		analyses:     analyses,
		users:        users,
		jobs:         jobs,
		applications: applications,
		ml:           ml,
		ttl:          ttl,
		logger:       log.WithFields(map[string]interface{}{"service": "analysis"}),
	}
}

// ExplainMatch scores the seeker's resume against a job with an
// explanation. A successful run also stamps match_score onto the seeker's
// application for that job, when one exists.
func (s *AnalysisService) ExplainMatch(ctx context.Context, userID, jobID string) (*models.AnalysisResponse, error) {
	if cached, err := s.cached(ctx, userID, jobID, models.AnalysisTypeJobMatch); cached != nil || err != nil {
		return cached, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result, err := s.ml.ExplainMatch(ctx, &mlclient.ExplainMatchRequest{
		UserID:             userID,
		JobID:              jobID,
		ResumeText:         user.ResumeText,
		JobDescription:     job.Description,
		JobSkills:          job.Skills,
		RequiredExperience: job.ExperienceMin,
		JobTitle:           job.Title,
	})
	if err != nil {
		return nil, err
	}

	s.stampMatchScore(ctx, userID, jobID, result)

	return s.storeResult(ctx, userID, jobID, models.AnalysisTypeJobMatch, result)
}

// ATSScore runs the resume keyword/formatting heuristic against the job's
// skill list.
func (s *AnalysisService) ATSScore(ctx context.Context, userID, jobID string) (*models.AnalysisResponse, error) {
	if cached, err := s.cached(ctx, userID, jobID, models.AnalysisTypeATSScore); cached != nil || err != nil {
		return cached, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result, err := s.ml.ATSScore(ctx, &mlclient.ATSScoreRequest{
		ResumeText: user.ResumeText,
		JobSkills:  job.Skills,
	})
	if err != nil {
		return nil, err
	}

	return s.storeResult(ctx, userID, jobID, models.AnalysisTypeATSScore, result)
}

// PredictCareer forecasts the seeker's next roles from their profile.
// Career analyses are job-independent and cache under an empty job ID.
func (s *AnalysisService) PredictCareer(ctx context.Context, userID string) (*models.AnalysisResponse, error) {
	if cached, err := s.cached(ctx, userID, "", models.AnalysisTypeCareerPath); cached != nil || err != nil {
		return cached, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.ml.PredictCareer(ctx, &mlclient.PredictCareerRequest{
		UserID:          userID,
		CurrentRole:     user.Headline,
		Skills:          user.Skills,
		ExperienceYears: user.ExperienceYears,
	})
	if err != nil {
		return nil, err
	}

	return s.storeResult(ctx, userID, "", models.AnalysisTypeCareerPath, result)
}

// InvalidateUser drops the user's cached analyses after a profile change.
func (s *AnalysisService) InvalidateUser(ctx context.Context, userID string) error {
	return s.analyses.DeleteForUser(ctx, userID)
}

// SweepExpired deletes analyses past their TTL; the scheduler calls this.
func (s *AnalysisService) SweepExpired(ctx context.Context) (int64, error) {
	return s.analyses.DeleteExpired(ctx)
}

func (s *AnalysisService) cached(ctx context.Context, userID, jobID string, analysisType models.AnalysisType) (*models.AnalysisResponse, error) {
	analysis, err := s.analyses.Get(ctx, userID, jobID, analysisType)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		metrics.AnalysisCacheHits.WithLabelValues(string(analysisType), "miss").Inc()
		return nil, nil
	}

	metrics.AnalysisCacheHits.WithLabelValues(string(analysisType), "hit").Inc()
	return &models.AnalysisResponse{
		AnalysisType: analysisType,
		JobID:        jobID,
		Result:       analysis.Result,
		Cached:       true,
		ExpiresAt:    analysis.ExpiresAt,
	}, nil
}

func (s *AnalysisService) storeResult(ctx context.Context, userID, jobID string, analysisType models.AnalysisType, result json.RawMessage) (*models.AnalysisResponse, error) {
	analysis, err := s.analyses.Upsert(ctx, userID, jobID, analysisType, result, s.ttl)
	if err != nil {
		// The score was computed; losing the cache write should not lose it.
		s.logger.Warn("analysis cache write failed", map[string]interface{}{
			"userId":       userID,
			"analysisType": string(analysisType),
			"error":        err.Error(),
		})
		return &models.AnalysisResponse{
			AnalysisType: analysisType,
			JobID:        jobID,
			Result:       result,
			Cached:       false,
			ExpiresAt:    time.Now().UTC().Add(s.ttl),
		}, nil
	}

	return &models.AnalysisResponse{
		AnalysisType: analysisType,
		JobID:        jobID,
		Result:       analysis.Result,
		Cached:       false,
		ExpiresAt:    analysis.ExpiresAt,
	}, nil
}

// stampMatchScore copies the overall score onto the seeker's application
// for the job. Best-effort: the analysis response never depends on it.
func (s *AnalysisService) stampMatchScore(ctx context.Context, userID, jobID string, result json.RawMessage) {
	var parsed struct {
		OverallScore float64 `json:"overall_match_score"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil || parsed.OverallScore <= 0 {
		return
	}

	applied, err := s.applications.HasApplied(ctx, jobID, userID)
	if err != nil || !applied {
		return
	}

	if err := s.applications.SetMatchScore(ctx, jobID, userID, parsed.OverallScore); err != nil {
		s.logger.Warn("match score stamp failed", map[string]interface{}{
			"jobId":  jobID,
			"userId": userID,
			"error":  err.Error(),
		})
	}
}
