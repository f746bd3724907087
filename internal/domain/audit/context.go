package audit

import "context"

type requestContextKey struct{}

// RequestContext is the network origin and client identity of the caller.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}
