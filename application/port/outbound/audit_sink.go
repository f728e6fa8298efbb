package outbound

import (
	"context"

	"github.com/txgate/txgate/domain"
)

// AuditSink appends one immutable record per processed transaction.
// Failures must not be retried synchronously on the hot path.
type AuditSink interface {
	Record(ctx context.Context, record domain.AuditRecord) error
}
