package domain

// Target is the invocation target a transaction code resolves to.
type Target struct {
	ObjectName string `json:"object_name"`
	MethodName string `json:"method_name"`
}

// TransactionDescriptor maps a transaction code to its target.
// Rows are owned by the seed/migration process and loaded read-only.
type TransactionDescriptor struct {
	TXCode     int64  `json:"tx_code"`
	ObjectName string `json:"object_name"`
	MethodName string `json:"method_name"`
}

// Target returns the descriptor's invocation target.
func (d TransactionDescriptor) Target() Target {
	return Target{ObjectName: d.ObjectName, MethodName: d.MethodName}
}

// PermissionGrant states that a profile may invoke object.method.
// Identity is the full (profile, object, method) triple.
type PermissionGrant struct {
	ProfileID  int64  `json:"profile_id"`
	ObjectName string `json:"object_name"`
	MethodName string `json:"method_name"`
}

// ExecutionContext carries the caller identity through a transaction.
// UserID is 0 for anonymous/public callers. It is constructed by the
// session layer and never persisted.
type ExecutionContext struct {
	UserID    int64  `json:"user_id,omitempty"`
	ProfileID int64  `json:"profile_id"`
	Username  string `json:"username,omitempty"`
}

// IsAnonymous reports whether the context has no authenticated user.
func (c ExecutionContext) IsAnonymous() bool {
	return c.UserID == 0
}
