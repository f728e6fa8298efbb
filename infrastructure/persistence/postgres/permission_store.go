package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	apperror "github.com/txgate/txgate/domain/error"
)

type permissionStore struct {
	db *sql.DB
}

// NewPermissionStore returns a Postgres-backed PermissionStore over the
// permission_grants and tx_mappings tables.
func NewPermissionStore(db *sql.DB) outbound.PermissionStore {
	return &permissionStore{db: db}
}

func (s *permissionStore) LoadAllGrants(ctx context.Context) ([]domain.PermissionGrant, error) {
	query := `
		SELECT profile_id, object_name, method_name
		FROM permission_grants
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable("load_grants", err)
	}
	defer rows.Close()

	var grants []domain.PermissionGrant
	for rows.Next() {
		var g domain.PermissionGrant
		if err := rows.Scan(&g.ProfileID, &g.ObjectName, &g.MethodName); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grants: %w", err)
	}

	return grants, nil
}

func (s *permissionStore) InsertGrant(ctx context.Context, grant domain.PermissionGrant) (bool, error) {
	query := `
		INSERT INTO permission_grants (profile_id, object_name, method_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, object_name, method_name) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query, grant.ProfileID, grant.ObjectName, grant.MethodName)
	if err != nil {
		return false, apperror.ErrStoreUnavailable("insert_grant", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (s *permissionStore) DeleteGrant(ctx context.Context, grant domain.PermissionGrant) (bool, error) {
	query := `
		DELETE FROM permission_grants
		WHERE profile_id = $1 AND object_name = $2 AND method_name = $3
	`

	result, err := s.db.ExecContext(ctx, query, grant.ProfileID, grant.ObjectName, grant.MethodName)
	if err != nil {
		return false, apperror.ErrStoreUnavailable("delete_grant", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (s *permissionStore) LoadAllTxMappings(ctx context.Context) ([]domain.TransactionDescriptor, error) {
	query := `
		SELECT tx_code, object_name, method_name
		FROM tx_mappings
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable("load_tx_mappings", err)
	}
	defer rows.Close()

	var descriptors []domain.TransactionDescriptor
	for rows.Next() {
		var d domain.TransactionDescriptor
		if err := rows.Scan(&d.TXCode, &d.ObjectName, &d.MethodName); err != nil {
			return nil, fmt.Errorf("failed to scan tx mapping: %w", err)
		}
		descriptors = append(descriptors, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tx mappings: %w", err)
	}

	return descriptors, nil
}
