package handlers

import "context"

type requestMetaKey struct{}

// RequestMeta holds per-request client metadata: network details for
// analytics and rate limiting, and the verified identity when the request
// carried a valid bearer token.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
	UserID    string // empty for anonymous requests
	Admin     bool
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}
