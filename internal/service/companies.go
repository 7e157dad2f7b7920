// internal/service/companies.go
package service

import (
	"context"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"
)

type CompanyService struct {
	companies *store.CompanyStore
	users     *store.UserStore
	logger    logger.Logger
}

func NewCompanyService(companies *store.CompanyStore, users *store.UserStore, log logger.Logger) *CompanyService {
	return &CompanyService{
		companies: companies,
		users:     users,
		logger:    log.WithFields(map[string]interface{}{"service": "companies"}),
	}
}

// Create registers a company and attaches the creating recruiter to it.
// One recruiter account manages one company.
func (s *CompanyService) Create(ctx context.Context, recruiterID string, company *models.Company) (*models.Company, error) {
	recruiter, err := s.users.GetByID(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if recruiter.CompanyID != nil {
		return nil, apperrors.NewBusinessRuleError(
			"Recruiter already belongs to a company",
			"companyId: "+*recruiter.CompanyID,
		)
	}

	company.CreatedBy = recruiterID
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	if err := s.users.SetCompany(ctx, recruiterID, company.ID); err != nil {
		return nil, err
	}

	s.logger.Info("company created", map[string]interface{}{
		"companyId":   company.ID,
		"recruiterId": recruiterID,
	})

	return company, nil
}

// Update rewrites a company's profile. Only the creating recruiter may edit.
func (s *CompanyService) Update(ctx context.Context, recruiterID string, company *models.Company) (*models.Company, error) {
	existing, err := s.companies.GetByID(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != recruiterID {
		return nil, apperrors.NewAuthorizationError("company belongs to another recruiter")
	}

	existing.Description = company.Description
	existing.Website = company.Website
	existing.Location = company.Location
	existing.Industry = company.Industry
	existing.LogoURL = company.LogoURL

	if err := s.companies.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	return s.companies.GetByID(ctx, id)
}

func (s *CompanyService) List(ctx context.Context, page, limit int) ([]models.Company, error) {
	return s.companies.List(ctx, page, limit)
}
