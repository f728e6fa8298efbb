package inbound

import (
	"context"

	"github.com/txgate/txgate/domain"
)

// TransactionExecutor is the single choke point every business transaction
// passes through. The transport layer maps the returned envelope directly
// to a protocol response.
type TransactionExecutor interface {
	Execute(ctx context.Context, tx int64, ectx domain.ExecutionContext, params interface{}) *domain.Result
}

// PermissionAdmin exposes the cache and registry operations to
// operational tooling (admin endpoints, test harnesses).
type PermissionAdmin interface {
	Check(profileID int64, objectName, methodName string) bool
	Grant(ctx context.Context, profileID int64, objectName, methodName string) bool
	Revoke(ctx context.Context, profileID int64, objectName, methodName string) bool
	Resolve(tx int64) (domain.Target, bool)
	IsReady() bool
	Reload(ctx context.Context) error
}
