package outbound

import (
	"context"

	"github.com/txgate/txgate/domain"
)

// PermissionStore is the durable side of the authorization state: the
// grant table and the TX mapping table. Every operation is safe to retry.
// Implementations report backend failures as catalog errors
// (ErrCodeStoreUnavailable) so transports can classify them.
type PermissionStore interface {
	// LoadAllGrants fetches every grant in one query.
	LoadAllGrants(ctx context.Context) ([]domain.PermissionGrant, error)
	// InsertGrant is ON-CONFLICT-safe; inserted is false when the grant
	// already existed.
	InsertGrant(ctx context.Context, grant domain.PermissionGrant) (inserted bool, err error)
	// DeleteGrant reports deleted=false when no such grant existed; that
	// is not an error.
	DeleteGrant(ctx context.Context, grant domain.PermissionGrant) (deleted bool, err error)
	// LoadAllTxMappings fetches the full TX to target mapping.
	LoadAllTxMappings(ctx context.Context) ([]domain.TransactionDescriptor, error)
}
