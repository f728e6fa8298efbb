package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/application/usecase/authz"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// unknownTarget is the target probed on the unknown-TX path so that an
// unknown code and a denied code cost the same cache lookup; the two
// failures should not be distinguishable by timing.
var unknownTarget = domain.Target{ObjectName: "~", MethodName: "~"}

// Orchestrator runs the full lifecycle of a transaction: resolve the code,
// authorize the caller's profile, invoke the target, audit the outcome.
// Authorization strictly precedes invocation; the invoker is never reached
// for an unauthorized pair.
type Orchestrator struct {
	registry *authz.TxRegistry
	cache    *authz.PermissionCache
	invoker  outbound.TargetInvoker
	audit    outbound.AuditSink
	logger   logger.Logger
}

func NewOrchestrator(
	registry *authz.TxRegistry,
	cache *authz.PermissionCache,
	invoker outbound.TargetInvoker,
	audit outbound.AuditSink,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		cache:    cache,
		invoker:  invoker,
		audit:    audit,
		logger:   log,
	}
}

// Execute dispatches one transaction and returns its response envelope.
// Resolution and authorization failures terminate the call immediately
// (fail closed); business failures returned by the invoker are passed
// through unchanged; audit failures are logged and swallowed.
func (o *Orchestrator) Execute(ctx context.Context, tx int64, ectx domain.ExecutionContext, params interface{}) *domain.Result {
	start := time.Now()

	// The envelope validator already rejects non-positive codes; re-check
	// here and fail closed anyway.
	if tx <= 0 {
		o.cache.Check(ectx.ProfileID, unknownTarget.ObjectName, unknownTarget.MethodName)
		return domain.Fail(domain.CodeUnknownTransaction, "unknown transaction")
	}

	// Resolving
	target, ok := o.registry.Resolve(tx)
	if !ok {
		o.cache.Check(ectx.ProfileID, unknownTarget.ObjectName, unknownTarget.MethodName)
		logger.LogSecurityEvent(ctx, o.logger, "unknown_transaction", "LOW", map[string]interface{}{
			"tx":         tx,
			"profile_id": ectx.ProfileID,
		})
		return domain.Fail(domain.CodeUnknownTransaction, "unknown transaction")
	}

	// Authorizing
	if !o.cache.Check(ectx.ProfileID, target.ObjectName, target.MethodName) {
		logger.LogSecurityEvent(ctx, o.logger, "transaction_denied", "MEDIUM", map[string]interface{}{
			"tx":         tx,
			"profile_id": ectx.ProfileID,
			"object":     target.ObjectName,
			"method":     target.MethodName,
		})
		return domain.Fail(domain.CodeForbidden, "transaction not permitted")
	}

	// Invoking
	result, err := o.invoker.Invoke(ctx, target.ObjectName, target.MethodName, ectx, params)
	if err != nil {
		o.logger.Error(ctx, "Target invocation failed", err, map[string]interface{}{
			"tx":     tx,
			"object": target.ObjectName,
			"method": target.MethodName,
		})
		result = domain.Fail(domain.CodeServerError, "internal server error")
	}

	// Auditing: best-effort, after success or business failure, before the
	// response is returned. A failed audit never changes the outcome.
	o.recordAudit(ctx, tx, target, ectx, result)

	logger.LogDispatchEvent(ctx, o.logger, "transaction_executed", tx, ectx.ProfileID, result.IsSuccess(), map[string]interface{}{
		"object":      target.ObjectName,
		"method":      target.MethodName,
		"code":        result.Code,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return result
}

func (o *Orchestrator) recordAudit(ctx context.Context, tx int64, target domain.Target, ectx domain.ExecutionContext, result *domain.Result) {
	action := domain.AuditActionOK
	details := result.Msg
	if !result.IsSuccess() {
		action = domain.AuditActionFailed
		details = fmt.Sprintf("code=%d msg=%s", result.Code, result.Msg)
	}

	record := domain.AuditRecord{
		RequestID:  requestID(ctx),
		UserID:     ectx.UserID,
		ProfileID:  ectx.ProfileID,
		ObjectName: target.ObjectName,
		MethodName: target.MethodName,
		TX:         tx,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}

	if err := o.audit.Record(ctx, record); err != nil {
		o.logger.Error(ctx, "Failed to write audit record", err, map[string]interface{}{
			"request_id": record.RequestID,
			"tx":         tx,
		})
	}
}

func requestID(ctx context.Context) string {
	if cid := logger.CorrelationID(ctx); cid != "" {
		return cid
	}
	return uuid.New().String()
}
