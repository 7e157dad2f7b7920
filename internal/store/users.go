// internal/store/users.go

// Package store holds the Postgres persistence layer, one store per
// aggregate.
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

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type UserStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewUserStore(db *sqlx.DB, log logger.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "users"}),
	}
}

const userColumns = `id, email, password_hash, full_name, role, phone, location, headline,
	skills, experience_years, resume_text, company_id, is_active, created_at, updated_at`

// Create inserts a new user. A duplicate email maps to DUPLICATE_EMAIL.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Skills == nil {
		user.Skills = pq.StringArray{}
	}

	query := `
		INSERT INTO users (email, password_hash, full_name, role, phone, location,
			headline, skills, experience_years, resume_text, company_id, is_active,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12, $13)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.Role, user.Phone,
		user.Location, user.Headline, user.Skills, user.ExperienceYears,
		user.ResumeText, user.CompanyID, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateEmailError(user.Email)
		}
		s.logger.Error("user insert failed", map[string]interface{}{
			"email": user.Email,
			"error": err.Error(),
		})
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	user.IsActive = true

	return nil
}

// GetByID fetches an active user.
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active`

	err := s.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewResourceNotFoundError("user", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("users.get", err)
	}

	return &user, nil
}

// GetByEmail fetches an active user by email for login.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active`

	err := s.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewResourceNotFoundError("user", email)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("users.getByEmail", err)
	}

	return &user, nil
}

// UpdateProfile updates the mutable profile fields.
func (s *UserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	if user.Skills == nil {
		user.Skills = pq.StringArray{}
	}

	query := `
		UPDATE users SET
			full_name = $1, phone = $2, location = $3, headline = $4, skills = $5,
			experience_years = $6, resume_text = $7, updated_at = $8
		WHERE id = $9 AND is_active`

	result, err := s.db.ExecContext(ctx, query,
		user.FullName, user.Phone, user.Location, user.Headline, user.Skills,
		user.ExperienceYears, user.ResumeText, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("users.update", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewResourceNotFoundError("user", user.ID)
	}

	return nil
}

// SetCompany attaches a recruiter to a company.
func (s *UserStore) SetCompany(ctx context.Context, userID, companyID string) error {
	query := `UPDATE users SET company_id = $1, updated_at = $2 WHERE id = $3 AND is_active`
	result, err := s.db.ExecContext(ctx, query, companyID, time.Now().UTC(), userID)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("users.setCompany", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewResourceNotFoundError("user", userID)
	}
	return nil
}

// Deactivate soft-deletes the user. Rows stay for audit and joins.
func (s *UserStore) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND is_active`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("users.deactivate", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewResourceNotFoundError("user", id)
	}

	s.logger.Info("user deactivated", map[string]interface{}{"userId": id})
	return nil
}

// GetContact returns the email and phone used for notifications.
func (s *UserStore) GetContact(ctx context.Context, id string) (email, phone string, err error) {
	query := `SELECT email, phone FROM users WHERE id = $1 AND is_active`
	err = s.db.QueryRowContext(ctx, query, id).Scan(&email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", apperrors.NewResourceNotFoundError("user", id)
	}
	if err != nil {
		return "", "", apperrors.NewQueryExecutionFailedError("users.getContact", err)
	}
	return email, phone, nil
}
