// internal/server/jobs.go
package server

import (
	"net/http"
	"strconv"
	"strings"

	"jobmate-backend/internal/models"
)

type jobRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"required,min=10"`
	Location      string   `json:"location" validate:"omitempty,max=120"`
	JobType       string   `json:"jobType" validate:"required,oneof=full-time part-time contract internship remote"`
	Skills        []string `json:"skills" validate:"omitempty,max=50,dive,min=1,max=60"`
	ExperienceMin float64  `json:"experienceMin" validate:"omitempty,min=0,max=60"`
	ExperienceMax float64  `json:"experienceMax" validate:"omitempty,min=0,max=60,gtefield=ExperienceMin"`
	SalaryMin     int      `json:"salaryMin" validate:"omitempty,min=0"`
	SalaryMax     int      `json:"salaryMax" validate:"omitempty,min=0,gtefield=SalaryMin"`
	Status        string   `json:"status" validate:"omitempty,oneof=open draft closed"`
}

func (req *jobRequest) toModel(id string) *models.Job {
	return &models.Job{
		ID:            id,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		JobType:       models.JobType(req.JobType),
		Skills:        req.Skills,
		ExperienceMin: req.ExperienceMin,
		ExperienceMax: req.ExperienceMax,
		SalaryMin:     req.SalaryMin,
		SalaryMax:     req.SalaryMax,
		Status:        models.JobStatus(req.Status),
	}
}

// parseJobFilters reads the /api/jobs query parameters.
func parseJobFilters(r *http.Request) models.JobSearchFilters {
	q := r.URL.Query()

	filters := models.JobSearchFilters{
		Query:     q.Get("q"),
		Location:  q.Get("location"),
		JobType:   q.Get("job_type"),
		CompanyID: q.Get("company_id"),
	}

	if skills := q.Get("skills"); skills != "" {
		for _, s := range strings.Split(skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filters.Skills = append(filters.Skills, s)
			}
		}
	}

	filters.ExperienceMax, _ = strconv.ParseFloat(q.Get("experience"), 64)
	filters.SalaryMin, _ = strconv.Atoi(q.Get("salary_min"))
	filters.SalaryMax, _ = strconv.Atoi(q.Get("salary_max"))
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))

	return filters
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.List(r.Context(), parseJobFilters(r))
	if err != nil {
		s.respondError(w, err, "jobs.list")
		return
	}

	respondData(w, http.StatusOK, list)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, err, "jobs.get")
		return
	}

	respondData(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req jobRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	job, err := s.jobs.Create(r.Context(), claims.Subject, req.toModel(""))
	if err != nil {
		s.respondError(w, err, "jobs.create")
		return
	}

	respondData(w, http.StatusCreated, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req jobRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	job, err := s.jobs.Update(r.Context(), claims.Subject, req.toModel(r.PathValue("id")))
	if err != nil {
		s.respondError(w, err, "jobs.update")
		return
	}

	respondData(w, http.StatusOK, job)
}

func (s *Server) handleCloseJob(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	if err := s.jobs.Close(r.Context(), claims.Subject, r.PathValue("id")); err != nil {
		s.respondError(w, err, "jobs.close")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleRecommendedJobs(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recommendations, err := s.recommendations.Recommend(r.Context(), claims.Subject, limit)
	if err != nil {
		s.respondError(w, err, "jobs.recommended")
		return
	}

	respondData(w, http.StatusOK, recommendations)
}

func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	jobs, err := s.jobs.ListForRecruiter(r.Context(), claims.Subject)
	if err != nil {
		s.respondError(w, err, "jobs.mine")
		return
	}

	respondData(w, http.StatusOK, jobs)
}

func (s *Server) handleJobApplications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	apps, err := s.applications.ListForJob(r.Context(), claims.Subject, r.PathValue("id"))
	if err != nil {
		s.respondError(w, err, "jobs.applications")
		return
	}

	respondData(w, http.StatusOK, apps)
}
