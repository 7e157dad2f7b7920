// internal/server/analysis.go
package server

import "net/http"

type analysisRequest struct {
	JobID string `json:"jobId" validate:"required,uuid4"`
}

func (s *Server) handleAnalysisMatch(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req analysisRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	result, err := s.analysis.ExplainMatch(r.Context(), claims.Subject, req.JobID)
	if err != nil {
		s.respondError(w, err, "analysis.match")
		return
	}

	respondData(w, http.StatusOK, result)
}

func (s *Server) handleAnalysisATS(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req analysisRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	result, err := s.analysis.ATSScore(r.Context(), claims.Subject, req.JobID)
	if err != nil {
		s.respondError(w, err, "analysis.ats")
		return
	}

	respondData(w, http.StatusOK, result)
}

// handleAnalysisCareer takes no body: the prediction reads the profile.
func (s *Server) handleAnalysisCareer(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	result, err := s.analysis.PredictCareer(r.Context(), claims.Subject)
	if err != nil {
		s.respondError(w, err, "analysis.career")
		return
	}

	respondData(w, http.StatusOK, result)
}
