package session

import "context"

// DefaultKey is used when no session key was put in the context, which is
// the single-user CLI case.
const DefaultKey = "default"

type ctxKey struct{}

// WithKey returns a context that scopes session lookups to key.
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

func KeyFrom(ctx context.Context) string {
	if key, ok := ctx.Value(ctxKey{}).(string); ok && key != "" {
		return key
	}
	return DefaultKey
}
