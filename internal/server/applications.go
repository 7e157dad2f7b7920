// internal/server/applications.go
package server

import (
	"net/http"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/models"
)

type applyRequest struct {
	JobID       string `json:"jobId" validate:"required,uuid4"`
	CoverLetter string `json:"coverLetter" validate:"omitempty,max=10000"`
}

type applicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req applyRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	app, err := s.applications.Apply(r.Context(), claims.Subject, req.JobID, req.CoverLetter)
	if err != nil {
		s.respondError(w, err, "applications.apply")
		return
	}

	respondData(w, http.StatusCreated, app)
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	apps, err := s.applications.ListMine(r.Context(), claims.Subject)
	if err != nil {
		s.respondError(w, err, "applications.listMine")
		return
	}

	respondData(w, http.StatusOK, apps)
}

func (s *Server) handleApplicationStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req applicationStatusRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	if !models.ValidApplicationStatus(req.Status) {
		s.respondError(w, apperrors.NewValidationError("unknown status: "+req.Status),
			"applications.updateStatus")
		return
	}

	app, err := s.applications.UpdateStatus(r.Context(), claims.Subject,
		r.PathValue("id"), models.ApplicationStatus(req.Status))
	if err != nil {
		s.respondError(w, err, "applications.updateStatus")
		return
	}

	respondData(w, http.StatusOK, app)
}
