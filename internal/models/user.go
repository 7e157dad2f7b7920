// internal/models/user.go
package models

import (
	"time"

	"github.com/lib/pq"
)

type UserRole string

const (
	RoleSeeker    UserRole = "seeker"
	RoleRecruiter UserRole = "recruiter"
)

// User is a job seeker or recruiter account. PasswordHash never leaves the
// store layer; API responses go through Public().
type User struct {
	ID              string         `json:"id" db:"id"`
	Email           string         `json:"email" db:"email"`
	PasswordHash    string         `json:"-" db:"password_hash"`
	FullName        string         `json:"fullName" db:"full_name"`
	Role            UserRole       `json:"role" db:"role"`
	Phone           string         `json:"phone" db:"phone"`
	Location        string         `json:"location" db:"location"`
	Headline        string         `json:"headline" db:"headline"`
	Skills          pq.StringArray `json:"skills" db:"skills"`
	ExperienceYears float64        `json:"experienceYears" db:"experience_years"`
	ResumeText      string         `json:"resumeText,omitempty" db:"resume_text"`
	CompanyID       *string        `json:"companyId,omitempty" db:"company_id"`
	IsActive        bool           `json:"isActive" db:"is_active"`
	CreatedAt       time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the profile shape exposed to other users (no contact data,
// no resume body).
type PublicUser struct {
	ID       string   `json:"id"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
	Location string   `json:"location"`
	Headline string   `json:"headline"`
	Skills   []string `json:"skills"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		FullName: u.FullName,
		Role:     u.Role,
		Location: u.Location,
		Headline: u.Headline,
		Skills:   u.Skills,
	}
}

func (u *User) IsSeeker() bool    { return u.Role == RoleSeeker }
func (u *User) IsRecruiter() bool { return u.Role == RoleRecruiter }
