package authz

import (
	"context"
	"sync"
	"time"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// TxRegistry translates an opaque transaction code into a concrete
// invocation target. The mapping is loaded from the store at startup and
// on explicit reload; between loads it is immutable.
type TxRegistry struct {
	store  outbound.PermissionStore
	logger logger.Logger

	wmu    sync.Mutex
	mu     sync.RWMutex
	byCode map[int64]domain.Target
	ready  bool
}

// NewTxRegistry creates an empty, not-yet-ready registry.
func NewTxRegistry(store outbound.PermissionStore, log logger.Logger) *TxRegistry {
	return &TxRegistry{
		store:  store,
		logger: log,
		byCode: make(map[int64]domain.Target),
	}
}

// Load fetches the full TX mapping from the store and swaps it in
// atomically. Idempotent; safe to call again to pick up newly provisioned
// codes. On failure the previous mapping is retained — partial loads are
// never applied.
func (r *TxRegistry) Load(ctx context.Context) error {
	r.wmu.Lock()
	defer r.wmu.Unlock()

	start := time.Now()
	rows, err := r.store.LoadAllTxMappings(ctx)
	if err != nil {
		r.logger.Error(ctx, "Failed to load transaction mappings", err, nil)
		return err
	}

	next := make(map[int64]domain.Target, len(rows))
	for _, d := range rows {
		next[d.TXCode] = d.Target()
	}

	r.mu.Lock()
	r.byCode = next
	r.ready = true
	r.mu.Unlock()

	logger.LogPerformance(ctx, r.logger, "tx_registry_load", time.Since(start), map[string]interface{}{
		"mappings": len(next),
	})
	return nil
}

// Resolve looks up the target for a transaction code. The second return
// is false for unknown codes so callers can produce a client-facing
// "unknown transaction" error rather than a server error.
func (r *TxRegistry) Resolve(tx int64) (domain.Target, bool) {
	if tx <= 0 {
		return domain.Target{}, false
	}

	r.mu.RLock()
	target, ok := r.byCode[tx]
	r.mu.RUnlock()

	return target, ok
}

// IsReady reports whether at least one Load has completed successfully.
func (r *TxRegistry) IsReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Size returns the number of registered transaction codes.
func (r *TxRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCode)
}
