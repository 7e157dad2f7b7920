// internal/store/audit.go
package store

import (
	"context"
	"encoding/json"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"

	"github.com/jmoiron/sqlx"
)

// AuditStore records portal events for later review. Writes are best-effort:
// callers log failures and carry on, an audit miss must never fail a request.
type AuditStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewAuditStore(db *sqlx.DB, log logger.Logger) *AuditStore {
	return &AuditStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "audit"}),
	}
}

// Record inserts an audit row. detail may be nil.
func (s *AuditStore) Record(ctx context.Context, actorID, action, entityType, entityID string, detail map[string]interface{}) error {
	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
	}

	// actor_id is a nullable UUID column; system events carry no actor.
	var actor interface{}
	if actorID != "" {
		actor = actorID
	}

	query := `
		INSERT INTO audit_log (actor_id, action, entity_type, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.db.ExecContext(ctx, query, actor, action, entityType, entityID, detailJSON); err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	return nil
}
