package middleware

import (
	"context"

	"b2b-quote/internal/model"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFromContext returns the caller stored by Authenticate, or nil.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(ctxPrincipal).(*model.Principal); ok {
		return p
	}
	return nil
}
