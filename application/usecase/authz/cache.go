package authz

import (
	"context"
	"sync"
	"time"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// grantKey is the composite identity of a permission grant.
type grantKey struct {
	profileID int64
	object    string
	method    string
}

// PermissionCache answers "may profile P invoke object.method?" from
// memory and keeps the store and the cache consistent when permissions
// change. The cache is the sole source of truth for authorization
// decisions at runtime; the store is consulted only at load, grant and
// revoke time.
//
// Grant and Revoke are dual-write operations ordered so that the cache is
// never ahead of the store: a grant hits the store before the cache, a
// revoke deletes from the store before the cache. A crash between the two
// steps leaves the cache behind the store, and the next Load repairs it.
type PermissionCache struct {
	store  outbound.PermissionStore
	logger logger.Logger

	// wmu serializes the writers (Grant, Revoke, Load) end to end,
	// including their store round-trip, so their store and cache steps
	// cannot interleave. mu guards the map itself and is held only around
	// the in-memory mutation, keeping Check free of I/O stalls.
	wmu    sync.Mutex
	mu     sync.RWMutex
	grants map[grantKey]struct{}
	loaded bool
}

// NewPermissionCache creates an empty, not-yet-loaded cache.
func NewPermissionCache(store outbound.PermissionStore, log logger.Logger) *PermissionCache {
	return &PermissionCache{
		store:  store,
		logger: log,
		grants: make(map[grantKey]struct{}),
	}
}

// Load fetches every grant from the store and replaces the cache contents
// in one atomic flip. On store failure the previous contents are left
// untouched and the error is surfaced; callers decide whether a stale
// cache is acceptable.
func (c *PermissionCache) Load(ctx context.Context) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	start := time.Now()
	rows, err := c.store.LoadAllGrants(ctx)
	if err != nil {
		c.logger.Error(ctx, "Failed to load permission grants", err, nil)
		return err
	}

	next := make(map[grantKey]struct{}, len(rows))
	for _, g := range rows {
		next[grantKey{profileID: g.ProfileID, object: g.ObjectName, method: g.MethodName}] = struct{}{}
	}

	c.mu.Lock()
	c.grants = next
	c.loaded = true
	c.mu.Unlock()

	logger.LogPerformance(ctx, c.logger, "permission_cache_load", time.Since(start), map[string]interface{}{
		"grants": len(next),
	})
	return nil
}

// Check reports whether the triple is granted. It never returns an error:
// malformed arguments and unknown triples are both false. Safe for
// arbitrary concurrent callers; it runs on the hot path of every
// transaction.
func (c *PermissionCache) Check(profileID int64, objectName, methodName string) bool {
	if profileID <= 0 || objectName == "" || methodName == "" {
		return false
	}

	key := grantKey{profileID: profileID, object: objectName, method: methodName}

	c.mu.RLock()
	_, ok := c.grants[key]
	c.mu.RUnlock()

	return ok
}

// Grant durably adds the triple and then mirrors it into the cache. The
// cache is updated only after the store confirms the write, so the cache
// never authorizes an action the store does not back. Returns true if the
// triple ends up granted, newly inserted or already present; false when
// the store write fails, in which case the cache is untouched.
func (c *PermissionCache) Grant(ctx context.Context, profileID int64, objectName, methodName string) bool {
	if profileID <= 0 || objectName == "" || methodName == "" {
		return false
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	grant := grantFor(profileID, objectName, methodName)
	inserted, err := c.store.InsertGrant(ctx, grant)
	if err != nil {
		c.logger.Error(ctx, "Failed to persist permission grant", err, map[string]interface{}{
			"profile_id": profileID,
			"object":     objectName,
			"method":     methodName,
		})
		return false
	}

	c.mu.Lock()
	c.grants[grantKey{profileID: profileID, object: objectName, method: methodName}] = struct{}{}
	c.mu.Unlock()

	c.logger.Info(ctx, "Permission granted", map[string]interface{}{
		"profile_id": profileID,
		"object":     objectName,
		"method":     methodName,
		"inserted":   inserted,
	})
	return true
}

// Revoke deletes the triple from the store first and from the cache only
// after the delete succeeds, so the cache never retains a grant the store
// has already dropped. Revoking a grant that does not exist is success.
// Returns false on store failure, leaving the cache untouched so a denied
// revoke does not silently imply anyone lost access.
func (c *PermissionCache) Revoke(ctx context.Context, profileID int64, objectName, methodName string) bool {
	if profileID <= 0 || objectName == "" || methodName == "" {
		return false
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	grant := grantFor(profileID, objectName, methodName)
	deleted, err := c.store.DeleteGrant(ctx, grant)
	if err != nil {
		c.logger.Error(ctx, "Failed to delete permission grant", err, map[string]interface{}{
			"profile_id": profileID,
			"object":     objectName,
			"method":     methodName,
		})
		return false
	}

	c.mu.Lock()
	delete(c.grants, grantKey{profileID: profileID, object: objectName, method: methodName})
	c.mu.Unlock()

	c.logger.Info(ctx, "Permission revoked", map[string]interface{}{
		"profile_id": profileID,
		"object":     objectName,
		"method":     methodName,
		"deleted":    deleted,
	})
	return true
}

// Loaded reports whether at least one Load has completed successfully.
func (c *PermissionCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Size returns the number of cached grants.
func (c *PermissionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grants)
}

func grantFor(profileID int64, objectName, methodName string) domain.PermissionGrant {
	return domain.PermissionGrant{
		ProfileID:  profileID,
		ObjectName: objectName,
		MethodName: methodName,
	}
}
