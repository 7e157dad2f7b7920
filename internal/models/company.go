// internal/models/company.go
package models

import "time"

type Company struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Website     string    `json:"website" db:"website"`
	Location    string    `json:"location" db:"location"`
	Industry    string    `json:"industry" db:"industry"`
	LogoURL     string    `json:"logoUrl" db:"logo_url"`
	CreatedBy   string    `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
