// internal/server/companies.go
package server

import (
	"net/http"
	"strconv"

	"jobmate-backend/internal/models"
)

type companyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Website     string `json:"website" validate:"omitempty,url"`
	Location    string `json:"location" validate:"omitempty,max=120"`
	Industry    string `json:"industry" validate:"omitempty,max=120"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	companies, err := s.companies.List(r.Context(), page, limit)
	if err != nil {
		s.respondError(w, err, "companies.list")
		return
	}

	respondData(w, http.StatusOK, companies)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.companies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, err, "companies.get")
		return
	}

	respondData(w, http.StatusOK, company)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req companyRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	company, err := s.companies.Create(r.Context(), claims.Subject, &models.Company{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Location:    req.Location,
		Industry:    req.Industry,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		s.respondError(w, err, "companies.create")
		return
	}

	respondData(w, http.StatusCreated, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req companyRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	company, err := s.companies.Update(r.Context(), claims.Subject, &models.Company{
		ID:          r.PathValue("id"),
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Location:    req.Location,
		Industry:    req.Industry,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		s.respondError(w, err, "companies.update")
		return
	}

	respondData(w, http.StatusOK, company)
}
