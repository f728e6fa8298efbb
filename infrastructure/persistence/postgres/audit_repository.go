package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	apperror "github.com/txgate/txgate/domain/error"
)

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository returns a Postgres-backed AuditSink appending to the
// append-only audit_log table.
func NewAuditRepository(db *sql.DB) outbound.AuditSink {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_log (id, request_id, user_id, profile_id, object_name, method_name, tx_code, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		record.RequestID,
		record.UserID,
		record.ProfileID,
		record.ObjectName,
		record.MethodName,
		record.TX,
		record.Action,
		record.Details,
		record.CreatedAt,
	)

	if err != nil {
		return apperror.ErrAuditFailure(err)
	}

	return nil
}
