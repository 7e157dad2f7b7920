// internal/store/jobs.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type JobStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewJobStore(db *sqlx.DB, log logger.Logger) *JobStore {
	return &JobStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "jobs"}),
	}
}

const jobColumns = `j.id, j.company_id, j.recruiter_id, j.title, j.description,
	j.location, j.job_type, j.skills, j.experience_min, j.experience_max,
	j.salary_min, j.salary_max, j.status, j.posted_at, j.created_at, j.updated_at,
	c.name AS company_name`

// Create inserts a job. Open jobs get posted_at stamped immediately; drafts
// are stamped when they are first opened.
func (s *JobStore) Create(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Skills == nil {
		job.Skills = pq.StringArray{}
	}
	if job.Status == models.JobStatusOpen {
		job.PostedAt = &now
	}

	query := `
		INSERT INTO jobs (company_id, recruiter_id, title, description, location,
			job_type, skills, experience_min, experience_max, salary_min,
			salary_max, status, posted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		job.CompanyID, job.RecruiterID, job.Title, job.Description, job.Location,
		job.JobType, job.Skills, job.ExperienceMin, job.ExperienceMax,
		job.SalaryMin, job.SalaryMax, job.Status, job.PostedAt,
		job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	return nil
}

func (s *JobStore) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	query := `SELECT ` + jobColumns + `
		FROM jobs j JOIN companies c ON c.id = j.company_id
		WHERE j.id = $1`

	err := s.db.GetContext(ctx, &job, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewResourceNotFoundError("job", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("jobs.get", err)
	}

	return &job, nil
}

// ListOpen returns open jobs newest first, optionally scoped to a company.
func (s *JobStore) ListOpen(ctx context.Context, companyID string, page, limit int) ([]models.Job, error) {
	jobs := []models.Job{}
	query := `SELECT ` + jobColumns + `
		FROM jobs j JOIN companies c ON c.id = j.company_id
		WHERE j.status = 'open' AND ($1 = '' OR j.company_id::text = $1)
		ORDER BY j.posted_at DESC
		LIMIT $2 OFFSET $3`

	err := s.db.SelectContext(ctx, &jobs, query, companyID, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("jobs.listOpen", err)
	}

	return jobs, nil
}

// ListByIDs fetches jobs by ID preserving the input order, used to hydrate
// search index hits. Unknown IDs are skipped silently.
func (s *JobStore) ListByIDs(ctx context.Context, ids []string) ([]models.Job, error) {
	if len(ids) == 0 {
		return []models.Job{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+jobColumns+`
		FROM jobs j JOIN companies c ON c.id = j.company_id
		WHERE j.id IN (?)`, ids)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("jobs.listByIDs", err)
	}

	jobs := []models.Job{}
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(query), args...); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("jobs.listByIDs", err)
	}

	byID := make(map[string]models.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	ordered := make([]models.Job, 0, len(jobs))
	for _, id := range ids {
		if j, ok := byID[id]; ok {
			ordered = append(ordered, j)
		}
	}

	return ordered, nil
}

// ListOpenExcludingApplied returns open jobs the seeker has not applied to,
// the candidate pool for recommendations.
func (s *JobStore) ListOpenExcludingApplied(ctx context.Context, seekerID string, limit int) ([]models.Job, error) {
	jobs := []models.Job{}
	query := `SELECT ` + jobColumns + `
		FROM jobs j JOIN companies c ON c.id = j.company_id
		WHERE j.status = 'open'
		  AND NOT EXISTS (
			SELECT 1 FROM job_applications a
			WHERE a.job_id = j.id AND a.seeker_id = $1
		  )
		ORDER BY j.posted_at DESC
		LIMIT $2`

	err := s.db.SelectContext(ctx, &jobs, query, seekerID, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("jobs.listForRecommendation", err)
	}

	return jobs, nil
}

// Update rewrites the mutable job fields. Opening a draft stamps posted_at.
func (s *JobStore) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	if job.Skills == nil {
		job.Skills = pq.StringArray{}
	}

	query := `
		UPDATE jobs SET
			title = $1, description = $2, location = $3, job_type = $4,
			skills = $5, experience_min = $6, experience_max = $7,
			salary_min = $8, salary_max = $9, status = $10,
			posted_at = CASE WHEN $10 = 'open' AND posted_at IS NULL THEN $11 ELSE posted_at END,
			updated_at = $11
		WHERE id = $12`

	result, err := s.db.ExecContext(ctx, query,
		job.Title, job.Description, job.Location, job.JobType, job.Skills,
		job.ExperienceMin, job.ExperienceMax, job.SalaryMin, job.SalaryMax,
		job.Status, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("jobs.update", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewResourceNotFoundError("job", job.ID)
	}

	return nil
}

// Close soft-deletes the job by moving it to closed status.
func (s *JobStore) Close(ctx context.Context, id string) error {
	query := `UPDATE jobs SET status = 'closed', updated_at = $1 WHERE id = $2 AND status <> 'closed'`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("jobs.close", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewResourceNotFoundError("job", id)
	}

	s.logger.Info("job closed", map[string]interface{}{"jobId": id})
	return nil
}
