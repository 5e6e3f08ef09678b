package auth

import "context"

type contextKey struct{}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	Email     string
	SessionID int64
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func Email(ctx context.Context) string {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return ""
	}
	return id.Email
}
