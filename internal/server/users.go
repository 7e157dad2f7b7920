// internal/server/users.go
package server

import (
	"net/http"

	"jobmate-backend/internal/models"
	"jobmate-backend/internal/service"
)

type registerRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8,max=72"`
	FullName        string   `json:"fullName" validate:"required,min=2,max=120"`
	Role            string   `json:"role" validate:"required,oneof=seeker recruiter"`
	Phone           string   `json:"phone" validate:"omitempty,min=10"`
	Location        string   `json:"location" validate:"omitempty,max=120"`
	Headline        string   `json:"headline" validate:"omitempty,max=200"`
	Skills          []string `json:"skills" validate:"omitempty,max=50,dive,min=1,max=60"`
	ExperienceYears float64  `json:"experienceYears" validate:"omitempty,min=0,max=60"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FullName        string   `json:"fullName" validate:"required,min=2,max=120"`
	Phone           string   `json:"phone" validate:"omitempty,min=10"`
	Location        string   `json:"location" validate:"omitempty,max=120"`
	Headline        string   `json:"headline" validate:"omitempty,max=200"`
	Skills          []string `json:"skills" validate:"omitempty,max=50,dive,min=1,max=60"`
	ExperienceYears float64  `json:"experienceYears" validate:"omitempty,min=0,max=60"`
	ResumeText      string   `json:"resumeText" validate:"omitempty,max=100000"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	result, err := s.users.Register(r.Context(), &service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		Role:            models.UserRole(req.Role),
		Phone:           req.Phone,
		Location:        req.Location,
		Headline:        req.Headline,
		Skills:          req.Skills,
		ExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		s.respondError(w, err, "users.register")
		return
	}

	respondData(w, http.StatusCreated, result)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	result, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, err, "users.login")
		return
	}

	respondData(w, http.StatusOK, result)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	if err := s.users.Logout(r.Context(), claims); err != nil {
		s.respondError(w, err, "users.logout")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	if err := s.users.Deactivate(r.Context(), claims); err != nil {
		s.respondError(w, err, "users.deactivate")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	user, err := s.users.Profile(r.Context(), claims.Subject)
	if err != nil {
		s.respondError(w, err, "users.profile")
		return
	}

	respondData(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req updateProfileRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), claims.Subject, &service.ProfileUpdate{
		FullName:        req.FullName,
		Phone:           req.Phone,
		Location:        req.Location,
		Headline:        req.Headline,
		Skills:          req.Skills,
		ExperienceYears: req.ExperienceYears,
		ResumeText:      req.ResumeText,
	})
	if err != nil {
		s.respondError(w, err, "users.updateProfile")
		return
	}

	respondData(w, http.StatusOK, user)
}
