// internal/store/companies.go
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

type CompanyStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewCompanyStore(db *sqlx.DB, log logger.Logger) *CompanyStore {
	return &CompanyStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "companies"}),
	}
}

const companyColumns = `id, name, description, website, location, industry, logo_url,
	created_by, created_at, updated_at`

// Create inserts a company. Names are unique case-insensitively; the
// constraint lives in the schema so concurrent creates cannot both land.
func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	query := `
		INSERT INTO companies (name, description, website, location, industry,
			logo_url, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		company.Name, company.Description, company.Website, company.Location,
		company.Industry, company.LogoURL, company.CreatedBy,
		company.CreatedAt, company.UpdatedAt,
	).Scan(&company.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateResourceError("company", "name: "+company.Name)
		}
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	return nil
}

func (s *CompanyStore) GetByID(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	err := s.db.GetContext(ctx, &company, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewResourceNotFoundError("company", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("companies.get", err)
	}

	return &company, nil
}

// List returns companies ordered by name.
func (s *CompanyStore) List(ctx context.Context, page, limit int) ([]models.Company, error) {
	companies := []models.Company{}
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name LIMIT $1 OFFSET $2`

	err := s.db.SelectContext(ctx, &companies, query, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("companies.list", err)
	}

	return companies, nil
}

// Update rewrites the mutable company fields.
func (s *CompanyStore) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE companies SET
			description = $1, website = $2, location = $3, industry = $4,
			logo_url = $5, updated_at = $6
		WHERE id = $7`

	result, err := s.db.ExecContext(ctx, query,
		company.Description, company.Website, company.Location,
		company.Industry, company.LogoURL, company.UpdatedAt, company.ID,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("companies.update", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewResourceNotFoundError("company", company.ID)
	}

	return nil
}
