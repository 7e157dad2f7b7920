// internal/models/application.go
package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusReviewed    ApplicationStatus = "reviewed"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"
)

// ValidApplicationStatus reports whether s is a status a recruiter may set.
func ValidApplicationStatus(s string) bool {
	switch ApplicationStatus(s) {
	case ApplicationStatusSubmitted, ApplicationStatusReviewed,
		ApplicationStatusShortlisted, ApplicationStatusRejected,
		ApplicationStatusAccepted:
		return true
	}
	return false
}

// statusTransitions defines the allowed forward moves. Accepted and rejected
// are terminal.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusSubmitted:   {ApplicationStatusReviewed, ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusReviewed:    {ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusShortlisted: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

// CanTransitionTo reports whether the status may move to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type JobApplication struct {
	ID          string            `json:"id" db:"id"`
	JobID       string            `json:"jobId" db:"job_id"`
	SeekerID    string            `json:"seekerId" db:"seeker_id"`
	ResumeText  string            `json:"resumeText,omitempty" db:"resume_text"`
	CoverLetter string            `json:"coverLetter,omitempty" db:"cover_letter"`
	Status      ApplicationStatus `json:"status" db:"status"`
	MatchScore  *float64          `json:"matchScore,omitempty" db:"match_score"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`

	// Joined for application listings.
	JobTitle    string `json:"jobTitle,omitempty" db:"job_title"`
	CompanyName string `json:"companyName,omitempty" db:"company_name"`
	SeekerName  string `json:"seekerName,omitempty" db:"seeker_name"`
}
