// internal/models/analysis.go
package models

import (
	"encoding/json"
	"time"
)

type AnalysisType string

const (
	AnalysisTypeJobMatch   AnalysisType = "job_match"
	AnalysisTypeATSScore   AnalysisType = "ats_score"
	AnalysisTypeCareerPath AnalysisType = "career_path"
)

// MLAnalysis is a TTL-cached blob of ML service output keyed by
// (user, job, analysis type). Career analyses store an empty job ID.
// Rows past ExpiresAt are invisible to reads and swept periodically.
type MLAnalysis struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"userId" db:"user_id"`
	JobID        string          `json:"jobId" db:"job_id"`
	AnalysisType AnalysisType    `json:"analysisType" db:"analysis_type"`
	Result       json.RawMessage `json:"result" db:"result"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	ExpiresAt    time.Time       `json:"expiresAt" db:"expires_at"`
}

// AnalysisResponse wraps an analysis result for the API, flagging whether it
// was served from the cache.
type AnalysisResponse struct {
	AnalysisType AnalysisType    `json:"analysisType"`
	JobID        string          `json:"jobId,omitempty"`
	Result       json.RawMessage `json:"result"`
	Cached       bool            `json:"cached"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}
