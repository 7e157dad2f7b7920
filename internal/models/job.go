// internal/models/job.go
package models

import (
	"time"

	"github.com/lib/pq"
)

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

type Job struct {
	ID            string         `json:"id" db:"id"`
	CompanyID     string         `json:"companyId" db:"company_id"`
	RecruiterID   string         `json:"recruiterId" db:"recruiter_id"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	Location      string         `json:"location" db:"location"`
	JobType       JobType        `json:"jobType" db:"job_type"`
	Skills        pq.StringArray `json:"skills" db:"skills"`
	ExperienceMin float64        `json:"experienceMin" db:"experience_min"`
	ExperienceMax float64        `json:"experienceMax" db:"experience_max"`
	SalaryMin     int            `json:"salaryMin" db:"salary_min"`
	SalaryMax     int            `json:"salaryMax" db:"salary_max"`
	Status        JobStatus      `json:"status" db:"status"`
	PostedAt      *time.Time     `json:"postedAt,omitempty" db:"posted_at"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`

	// Joined for list/detail responses, not a column on jobs.
	CompanyName string `json:"companyName,omitempty" db:"company_name"`
}

// JobSearchFilters collects the supported /api/jobs query parameters.
// A zero-value filter set means "plain paginated listing".
type JobSearchFilters struct {
	Query         string
	Location      string
	JobType       string
	Skills        []string
	ExperienceMax float64
	SalaryMin     int
	SalaryMax     int
	CompanyID     string
	Page          int
	Limit         int
}

// NeedsSearch reports whether the filters require the search index rather
// than a plain database listing.
func (f JobSearchFilters) NeedsSearch() bool {
	return f.Query != "" || f.Location != "" || f.JobType != "" ||
		len(f.Skills) > 0 || f.ExperienceMax > 0 || f.SalaryMin > 0 || f.SalaryMax > 0
}
