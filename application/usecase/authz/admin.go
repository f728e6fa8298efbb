package authz

import (
	"context"

	"github.com/txgate/txgate/domain"
)

// Admin bundles the cache and registry operations exposed to operational
// tooling, so the admin transport depends on one narrow surface instead
// of the two components.
type Admin struct {
	cache    *PermissionCache
	registry *TxRegistry
}

func NewAdmin(cache *PermissionCache, registry *TxRegistry) *Admin {
	return &Admin{cache: cache, registry: registry}
}

func (a *Admin) Check(profileID int64, objectName, methodName string) bool {
	return a.cache.Check(profileID, objectName, methodName)
}

func (a *Admin) Grant(ctx context.Context, profileID int64, objectName, methodName string) bool {
	return a.cache.Grant(ctx, profileID, objectName, methodName)
}

func (a *Admin) Revoke(ctx context.Context, profileID int64, objectName, methodName string) bool {
	return a.cache.Revoke(ctx, profileID, objectName, methodName)
}

func (a *Admin) Resolve(tx int64) (domain.Target, bool) {
	return a.registry.Resolve(tx)
}

// IsReady is true once both the registry and the cache have completed a
// successful load.
func (a *Admin) IsReady() bool {
	return a.registry.IsReady() && a.cache.Loaded()
}

// Reload refreshes the registry first, then the cache. Either failure
// aborts and leaves the previous state serving.
func (a *Admin) Reload(ctx context.Context) error {
	if err := a.registry.Load(ctx); err != nil {
		return err
	}
	return a.cache.Load(ctx)
}
