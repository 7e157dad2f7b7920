// internal/store/analyses.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// AnalysisStore persists ML service output as TTL-cached rows keyed by
// (user, job, analysis type). Expired rows are invisible to Get and removed
// by DeleteExpired, which the maintenance scheduler runs periodically.
type AnalysisStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewAnalysisStore(db *sqlx.DB, log logger.Logger) *AnalysisStore {
	return &AnalysisStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "analyses"}),
	}
}

// Get returns a fresh cached analysis, or nil when none exists.
func (s *AnalysisStore) Get(ctx context.Context, userID, jobID string, analysisType models.AnalysisType) (*models.MLAnalysis, error) {
	var analysis models.MLAnalysis
	query := `SELECT id, user_id, job_id, analysis_type, result, created_at, expires_at
		FROM ml_analyses
		WHERE user_id = $1 AND job_id = $2 AND analysis_type = $3 AND expires_at > now()`

	err := s.db.GetContext(ctx, &analysis, query, userID, jobID, analysisType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("analyses.get", err)
	}

	return &analysis, nil
}

// Upsert stores an analysis result, replacing any previous row for the same
// key so a stale entry never shadows a fresh one.
func (s *AnalysisStore) Upsert(ctx context.Context, userID, jobID string, analysisType models.AnalysisType, result json.RawMessage, ttl time.Duration) (*models.MLAnalysis, error) {
	analysis := models.MLAnalysis{
		UserID:       userID,
		JobID:        jobID,
		AnalysisType: analysisType,
		Result:       result,
		CreatedAt:    time.Now().UTC(),
	}
	analysis.ExpiresAt = analysis.CreatedAt.Add(ttl)

	query := `
		INSERT INTO ml_analyses (user_id, job_id, analysis_type, result, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uq_analysis_user_job_type
		DO UPDATE SET result = EXCLUDED.result,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		analysis.UserID, analysis.JobID, analysis.AnalysisType,
		[]byte(analysis.Result), analysis.CreatedAt, analysis.ExpiresAt,
	).Scan(&analysis.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	return &analysis, nil
}

// DeleteForUser drops every cached analysis for the user. Called when the
// profile or resume changes, since all analysis types depend on both.
func (s *AnalysisStore) DeleteForUser(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM ml_analyses WHERE user_id = $1`, userID)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("analyses.deleteForUser", err)
	}

	if affected, _ := result.RowsAffected(); affected > 0 {
		s.logger.Info("invalidated cached analyses", map[string]interface{}{
			"userId":  userID,
			"deleted": affected,
		})
	}

	return nil
}

// DeleteExpired removes rows past their TTL and reports how many went.
func (s *AnalysisStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM ml_analyses WHERE expires_at <= now()`)
	if err != nil {
		return 0, apperrors.NewQueryExecutionFailedError("analyses.deleteExpired", err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}
