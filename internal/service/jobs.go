// internal/service/jobs.go
package service

import (
	"context"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"
)

// JobSearchIndex is the Elasticsearch surface the job service needs.
type JobSearchIndex interface {
	Index(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, jobID string) error
	Search(ctx context.Context, filters models.JobSearchFilters) ([]string, int, error)
	Similar(ctx context.Context, skills []string, location string, size int) ([]string, error)
}

// JobList is a paginated job listing.
type JobList struct {
	Jobs  []models.Job `json:"jobs"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type JobService struct {
	jobs   *store.JobStore
	users  *store.UserStore
	index  JobSearchIndex
	logger logger.Logger
}

func NewJobService(jobs *store.JobStore, users *store.UserStore, index JobSearchIndex, log logger.Logger) *JobService {
	return &JobService{
		jobs:   jobs,
		users:  users,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"service": "jobs"}),
	}
}

// Create posts a job under the recruiter's company. The search index write
// is best-effort: the job exists once the row lands, indexing lag only
// hides it from filtered search until the next update.
func (s *JobService) Create(ctx context.Context, recruiterID string, job *models.Job) (*models.Job, error) {
	recruiter, err := s.users.GetByID(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if recruiter.CompanyID == nil {
		return nil, apperrors.NewBusinessRuleError(
			"Recruiter must create a company before posting jobs", "")
	}

	job.CompanyID = *recruiter.CompanyID
	job.RecruiterID = recruiterID
	if job.Status == "" {
		job.Status = models.JobStatusOpen
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if job.Status == models.JobStatusOpen {
		s.indexJob(ctx, job)
	}

	s.logger.Info("job created", map[string]interface{}{
		"jobId":     job.ID,
		"companyId": job.CompanyID,
		"status":    string(job.Status),
	})

	return job, nil
}

// Update rewrites a job owned by the recruiter and refreshes the index.
func (s *JobService) Update(ctx context.Context, recruiterID string, job *models.Job) (*models.Job, error) {
	existing, err := s.jobs.GetByID(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if existing.RecruiterID != recruiterID {
		return nil, apperrors.NewAuthorizationError("job belongs to another recruiter")
	}

	existing.Title = job.Title
	existing.Description = job.Description
	existing.Location = job.Location
	existing.JobType = job.JobType
	existing.Skills = job.Skills
	existing.ExperienceMin = job.ExperienceMin
	existing.ExperienceMax = job.ExperienceMax
	existing.SalaryMin = job.SalaryMin
	existing.SalaryMax = job.SalaryMax
	if job.Status != "" {
		existing.Status = job.Status
	}

	if err := s.jobs.Update(ctx, existing); err != nil {
		return nil, err
	}

	if existing.Status == models.JobStatusOpen {
		s.indexJob(ctx, existing)
	} else {
		s.deindexJob(ctx, existing.ID)
	}

	return existing, nil
}

// Close soft-deletes the job and removes it from search.
func (s *JobService) Close(ctx context.Context, recruiterID, jobID string) error {
	existing, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if existing.RecruiterID != recruiterID {
		return apperrors.NewAuthorizationError("job belongs to another recruiter")
	}

	if err := s.jobs.Close(ctx, jobID); err != nil {
		return err
	}

	s.deindexJob(ctx, jobID)
	return nil
}

func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// List serves /api/jobs. Filtered or free-text queries go through the search
// index and are rehydrated from PostgreSQL in relevance order; a bare
// listing reads PostgreSQL directly.
func (s *JobService) List(ctx context.Context, filters models.JobSearchFilters) (*JobList, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}

	if !filters.NeedsSearch() {
		jobs, err := s.jobs.ListOpen(ctx, filters.CompanyID, filters.Page, filters.Limit)
		if err != nil {
			return nil, err
		}
		return &JobList{Jobs: jobs, Total: len(jobs), Page: filters.Page, Limit: filters.Limit}, nil
	}

	ids, total, err := s.index.Search(ctx, filters)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// The index can briefly hold closed jobs; drop them on the way out.
	open := jobs[:0]
	for _, j := range jobs {
		if j.Status == models.JobStatusOpen {
			open = append(open, j)
		}
	}

	return &JobList{Jobs: open, Total: total, Page: filters.Page, Limit: filters.Limit}, nil
}

// ListForRecruiter returns the open postings at the recruiter's company.
func (s *JobService) ListForRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error) {
	recruiter, err := s.users.GetByID(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if recruiter.CompanyID == nil {
		return []models.Job{}, nil
	}
	return s.jobs.ListOpen(ctx, *recruiter.CompanyID, 1, 100)
}

func (s *JobService) indexJob(ctx context.Context, job *models.Job) {
	if err := s.index.Index(ctx, job); err != nil {
		s.logger.Warn("job indexing failed", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
	}
}

func (s *JobService) deindexJob(ctx context.Context, jobID string) {
	if err := s.index.Delete(ctx, jobID); err != nil {
		s.logger.Warn("job de-indexing failed", map[string]interface{}{
			"jobId": jobID,
			"error": err.Error(),
		})
	}
}
