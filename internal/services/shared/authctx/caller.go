// Package authctx resolves caller identity and privilege for planner requests.
package authctx

import "context"

// Caller identifies an authenticated request principal.
type Caller struct {
	UserID string
	// Privileged marks callers allowed to approve or reject submitted recipes.
	Privileged bool
}

// callerContextKey is the context key for authenticated caller identity.
type callerContextKey struct{}

// WithCaller stores a caller identity in context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext returns the caller identity stored in context.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	if !ok || caller.UserID == "" {
		return Caller{}, false
	}
	return caller, true
}
