package liqpay

import (
	"context"
	"net/http"
	"strings"
)

// RequestContext carries metadata of the HTTP request that delivered a
// callback.
type RequestContext struct {
	// Information about the client making this request
	//
	// Example: LiqPay/1.0
	UserAgent string
	// Unique key for each request for tracing purposes
	//
	// Example: request_id_123
	RequestID string
	// Original client address chain when behind a proxy
	//
	// Example: 203.0.113.7, 10.0.0.1
	ForwardedFor string
	// Network address of the immediate peer
	RemoteAddr string
}

func requestContextFromRequest(r *http.Request) *RequestContext {
	return &RequestContext{
		UserAgent:    strings.TrimSpace(r.Header.Get("User-Agent")),
		RequestID:    strings.TrimSpace(r.Header.Get("X-Request-Id")),
		ForwardedFor: strings.TrimSpace(r.Header.Get("X-Forwarded-For")),
		RemoteAddr:   r.RemoteAddr,
	}
}

type requestContextKey struct{}

func contextWithRequestContext(ctx context.Context, requestCtx *RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if requestCtx == nil {
		return ctx
	}
	return context.WithValue(ctx, requestContextKey{}, requestCtx)
}

// RequestContextFromContext extracts the HTTP request metadata previously stored in the context.
func RequestContextFromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	if requestCtx, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok {
		return requestCtx
	}
	return nil
}
