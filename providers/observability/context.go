package observability

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var observerContextKey = contextKey{}

// ObserverFromContext extracts a Provider from the context.
// Returns nil if no observer is present.
func ObserverFromContext(ctx context.Context) Provider {
	if ctx == nil {
		return nil
	}
	provider, _ := ctx.Value(observerContextKey).(Provider)
	return provider
}

// ContextWithObserver returns a new context with the given provider attached.
func ContextWithObserver(ctx context.Context, provider Provider) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, observerContextKey, provider)
}
