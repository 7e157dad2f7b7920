// internal/mlclient/models.go
package mlclient

import "encoding/json"

// Request DTOs mirror the ML service schemas (camelCase JSON).

type ExplainMatchRequest struct {
	UserID             string   `json:"userId"`
	JobID              string   `json:"jobId"`
	ResumeText         string   `json:"resumeText"`
	JobDescription     string   `json:"jobDescription"`
	JobSkills          []string `json:"jobSkills"`
	RequiredExperience float64  `json:"requiredExperience"`
	JobTitle           string   `json:"jobTitle,omitempty"`
	ConversationID     string   `json:"conversationId,omitempty"`
}

type ATSScoreRequest struct {
	ResumeText string   `json:"resumeText"`
	JobSkills  []string `json:"jobSkills"`
}

type PredictCareerRequest struct {
	UserID          string   `json:"userId"`
	CurrentRole     string   `json:"currentRole"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experienceYears"`
	Education       string   `json:"education,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
}

type ChatRequest struct {
	UserID         string                 `json:"userId"`
	Message        string                 `json:"message"`
	ConversationID string                 `json:"conversationId,omitempty"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// ChatResponse is the assistant's reply with the classified intent.
type ChatResponse struct {
	Response       string `json:"response"`
	Intent         string `json:"intent"`
	ConversationID string `json:"conversationId"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	JobMatcherLoaded bool   `json:"job_matcher_loaded"`
	Environment      string `json:"environment"`
}

// envelope is the ML service response wrapper. Failures carry an error
// string instead of data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}
