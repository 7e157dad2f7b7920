// internal/store/applications.go
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
)

type ApplicationStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewApplicationStore(db *sqlx.DB, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "applications"}),
	}
}

const applicationColumns = `a.id, a.job_id, a.seeker_id, a.resume_text, a.cover_letter,
	a.status, a.match_score, a.created_at, a.updated_at`

// Create inserts an application. The (job, seeker) uniqueness constraint
// maps to DUPLICATE_APPLICATION.
func (s *ApplicationStore) Create(ctx context.Context, app *models.JobApplication) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	app.Status = models.ApplicationStatusSubmitted

	query := `
		INSERT INTO job_applications (job_id, seeker_id, resume_text, cover_letter,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		app.JobID, app.SeekerID, app.ResumeText, app.CoverLetter,
		app.Status, app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateApplicationError(app.JobID)
		}
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	return nil
}

func (s *ApplicationStore) GetByID(ctx context.Context, id string) (*models.JobApplication, error) {
	var app models.JobApplication
	query := `SELECT ` + applicationColumns + `, j.title AS job_title, c.name AS company_name
		FROM job_applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.id = $1`

	err := s.db.GetContext(ctx, &app, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewResourceNotFoundError("application", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("applications.get", err)
	}

	return &app, nil
}

// ListBySeeker returns the seeker's applications newest first.
func (s *ApplicationStore) ListBySeeker(ctx context.Context, seekerID string) ([]models.JobApplication, error) {
	apps := []models.JobApplication{}
	query := `SELECT ` + applicationColumns + `, j.title AS job_title, c.name AS company_name
		FROM job_applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.seeker_id = $1
		ORDER BY a.created_at DESC`

	err := s.db.SelectContext(ctx, &apps, query, seekerID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("applications.listBySeeker", err)
	}

	return apps, nil
}

// ListByJob returns the applicants for a job, for the recruiter view.
func (s *ApplicationStore) ListByJob(ctx context.Context, jobID string) ([]models.JobApplication, error) {
	apps := []models.JobApplication{}
	query := `SELECT ` + applicationColumns + `, u.full_name AS seeker_name
		FROM job_applications a
		JOIN users u ON u.id = a.seeker_id
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC`

	err := s.db.SelectContext(ctx, &apps, query, jobID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("applications.listByJob", err)
	}

	return apps, nil
}

// HasApplied reports whether the seeker already applied to the job.
func (s *ApplicationStore) HasApplied(ctx context.Context, jobID, seekerID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
		SELECT 1 FROM job_applications WHERE job_id = $1 AND seeker_id = $2)`

	err := s.db.QueryRowContext(ctx, query, jobID, seekerID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewQueryExecutionFailedError("applications.hasApplied", err)
	}

	return exists, nil
}

// UpdateStatus moves the application to a new status.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	query := `UPDATE job_applications SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("applications.updateStatus", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewResourceNotFoundError("application", id)
	}

	return nil
}

// SetMatchScore stamps a computed match score onto the seeker's application
// for the job, if one exists. No-op when the seeker has not applied.
func (s *ApplicationStore) SetMatchScore(ctx context.Context, jobID, seekerID string, score float64) error {
	query := `UPDATE job_applications SET match_score = $1, updated_at = $2
		WHERE job_id = $3 AND seeker_id = $4`

	_, err := s.db.ExecContext(ctx, query, score, time.Now().UTC(), jobID, seekerID)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("applications.setMatchScore", err)
	}

	return nil
}
