package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txgate/txgate/domain"
)

func TestResolveKnownAndUnknown(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.mappings = []domain.TransactionDescriptor{
		{TXCode: 1001, ObjectName: "Auth", MethodName: "login"},
		{TXCode: 2001, ObjectName: "Coupons", MethodName: "create"},
	}

	registry := NewTxRegistry(store, testLogger())
	require.NoError(t, registry.Load(ctx))

	target, ok := registry.Resolve(1001)
	assert.True(t, ok)
	assert.Equal(t, domain.Target{ObjectName: "Auth", MethodName: "login"}, target)

	_, ok = registry.Resolve(9999)
	assert.False(t, ok)

	_, ok = registry.Resolve(0)
	assert.False(t, ok)

	_, ok = registry.Resolve(-1001)
	assert.False(t, ok)
}

func TestRegistryReadiness(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	registry := NewTxRegistry(store, testLogger())

	assert.False(t, registry.IsReady())

	require.NoError(t, registry.Load(ctx))
	assert.True(t, registry.IsReady())
}

func TestRegistryLoadFailureRetainsMapping(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.mappings = []domain.TransactionDescriptor{
		{TXCode: 1001, ObjectName: "Auth", MethodName: "login"},
	}

	registry := NewTxRegistry(store, testLogger())
	require.NoError(t, registry.Load(ctx))

	store.failLoadMappings = true
	assert.Error(t, registry.Load(ctx))

	// The previous mapping keeps serving.
	target, ok := registry.Resolve(1001)
	assert.True(t, ok)
	assert.Equal(t, "Auth", target.ObjectName)
	assert.True(t, registry.IsReady())
}

func TestRegistryReloadPicksUpNewCodes(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.mappings = []domain.TransactionDescriptor{
		{TXCode: 1001, ObjectName: "Auth", MethodName: "login"},
	}

	registry := NewTxRegistry(store, testLogger())
	require.NoError(t, registry.Load(ctx))
	assert.Equal(t, 1, registry.Size())

	store.mu.Lock()
	store.mappings = append(store.mappings, domain.TransactionDescriptor{
		TXCode: 3001, ObjectName: "Reports", MethodName: "export",
	})
	store.mu.Unlock()

	require.NoError(t, registry.Load(ctx))
	assert.Equal(t, 2, registry.Size())

	_, ok := registry.Resolve(3001)
	assert.True(t, ok)
}

func TestAdminReadiness(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cache := NewPermissionCache(store, testLogger())
	registry := NewTxRegistry(store, testLogger())
	admin := NewAdmin(cache, registry)

	assert.False(t, admin.IsReady())

	require.NoError(t, registry.Load(ctx))
	assert.False(t, admin.IsReady())

	require.NoError(t, cache.Load(ctx))
	assert.True(t, admin.IsReady())
}

func TestAdminReloadPropagatesFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cache := NewPermissionCache(store, testLogger())
	registry := NewTxRegistry(store, testLogger())
	admin := NewAdmin(cache, registry)

	require.NoError(t, admin.Reload(ctx))

	store.failLoadMappings = true
	assert.Error(t, admin.Reload(ctx))
}
