package liqpay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestContextFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, DefaultCallbackPath, nil)
	req.Header.Set("User-Agent", " LiqPay/1.0 ")
	req.Header.Set("X-Request-Id", "req-123")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.RemoteAddr = "10.0.0.1:4321"

	got := requestContextFromRequest(req)
	if got == nil {
		t.Fatalf("expected request context")
	}
	if got.UserAgent != "LiqPay/1.0" {
		t.Fatalf("unexpected user-agent %q", got.UserAgent)
	}
	if got.RequestID != "req-123" {
		t.Fatalf("unexpected request id %q", got.RequestID)
	}
	if got.ForwardedFor != "203.0.113.7, 10.0.0.1" {
		t.Fatalf("unexpected forwarded-for %q", got.ForwardedFor)
	}
	if got.RemoteAddr != "10.0.0.1:4321" {
		t.Fatalf("unexpected remote addr %q", got.RemoteAddr)
	}
}

func TestRequestContextRoundTrip(t *testing.T) {
	t.Parallel()

	requestCtx := &RequestContext{RequestID: "req-1"}
	ctx := contextWithRequestContext(context.Background(), requestCtx)
	got := RequestContextFromContext(ctx)
	if got == nil {
		t.Fatalf("expected request context")
	}
	if got != requestCtx {
		t.Fatalf("expected same pointer")
	}
	if RequestContextFromContext(context.Background()) != nil {
		t.Fatalf("expected nil for empty context")
	}
	if ctx := contextWithRequestContext(context.Background(), nil); RequestContextFromContext(ctx) != nil {
		t.Fatalf("expected nil when no request context stored")
	}
}
