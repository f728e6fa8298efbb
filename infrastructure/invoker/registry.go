package invoker

import (
	"context"
	"fmt"
	"sync"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
)

// HandlerFunc is one business method. Business-level failures are
// returned as envelopes; an error aborts the invocation as a server
// failure.
type HandlerFunc func(ctx context.Context, ectx domain.ExecutionContext, params interface{}) (*domain.Result, error)

// Registry is an in-process TargetInvoker: a two-level map from object
// name to method name to handler. Registration happens at bootstrap,
// before the first request; lookups are read-only after that.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]map[string]HandlerFunc),
	}
}

// Register binds object.method to a handler. Registering the same pair
// twice is a bootstrap bug and returns an error.
func (r *Registry) Register(objectName, methodName string, handler HandlerFunc) error {
	if objectName == "" || methodName == "" {
		return fmt.Errorf("object and method names are required")
	}
	if handler == nil {
		return fmt.Errorf("handler for %s.%s is nil", objectName, methodName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	methods, ok := r.handlers[objectName]
	if !ok {
		methods = make(map[string]HandlerFunc)
		r.handlers[objectName] = methods
	}

	if _, exists := methods[methodName]; exists {
		return fmt.Errorf("handler for %s.%s already registered", objectName, methodName)
	}

	methods[methodName] = handler
	return nil
}

// MustRegister is Register for bootstrap code paths where a duplicate
// registration should stop the process.
func (r *Registry) MustRegister(objectName, methodName string, handler HandlerFunc) {
	if err := r.Register(objectName, methodName, handler); err != nil {
		panic(err)
	}
}

// Invoke executes the handler bound to object.method. Unknown objects and
// methods are infrastructure errors, not business failures: the registry
// and the invoker are provisioned from the same seed, so a miss here means
// a deployment bug.
func (r *Registry) Invoke(ctx context.Context, objectName, methodName string, ectx domain.ExecutionContext, params interface{}) (*domain.Result, error) {
	r.mu.RLock()
	methods, ok := r.handlers[objectName]
	if !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", outbound.ErrUnknownObject, objectName)
	}
	handler, ok := methods[methodName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", outbound.ErrUnknownMethod, objectName, methodName)
	}

	return handler(ctx, ectx, params)
}

var _ outbound.TargetInvoker = (*Registry)(nil)
