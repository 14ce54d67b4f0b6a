package liqpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/liqpay/liqpay-go/signature"
)

const (
	callbackSecret    = "your_private_key"
	callbackData      = "eyJhbW91bnQiOiIxMC4wMCIsIm9yZGVyX2lkIjoiMTIzNDU2Iiwic3RhdHVzIjoic3VjY2VzcyJ9"
	callbackSignature = "WIm17SaX+rd0IIs4lARrByXq7Y4="
)

func signedCallback(t *testing.T, secret string, payload map[string]any) (string, string) {
	t.Helper()

	raw, err := signature.Canonicalize(payload)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	data := signature.Encode(raw)
	return data, signature.Sign(secret, []byte(data))
}

func TestDecodeCallback(t *testing.T) {
	t.Parallel()

	c := New("your_public_key", callbackSecret)
	params, err := c.DecodeCallback(callbackData, callbackSignature)
	if err != nil {
		t.Fatalf("DecodeCallback: %v", err)
	}
	want := Params{"amount": "10.00", "order_id": "123456", "status": "success"}
	if len(params) != len(want) {
		t.Fatalf("unexpected params %v", params)
	}
	for k, v := range want {
		if params[k] != v {
			t.Fatalf("param %s: expected %v, got %v", k, v, params[k])
		}
	}
}

func TestDecodeCallbackRejectsTamperedSignature(t *testing.T) {
	t.Parallel()

	c := New("your_public_key", callbackSecret)
	tampered := callbackSignature[:len(callbackSignature)-2] + "5="

	for name, sig := range map[string]string{
		"altered trailing byte": tampered,
		"empty":                 "",
		"garbage":               "invalid_signature",
	} {
		params, err := c.DecodeCallback(callbackData, sig)
		if params != nil {
			t.Fatalf("%s: expected no params", name)
		}
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) || validationErr.Field != "signature" {
			t.Fatalf("%s: expected signature validation error, got %v", name, err)
		}
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Fatalf("%s: expected ErrSignatureMismatch", name)
		}
	}
}

func TestDecodeCallbackVerifiesBeforeParsing(t *testing.T) {
	t.Parallel()

	c := New("your_public_key", callbackSecret)
	_, err := c.DecodeCallback("%%% not base64 %%%", "AAAA")
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		t.Fatalf("payload parsed before signature check: %v", err)
	}
}

func TestDecodeDataErrors(t *testing.T) {
	t.Parallel()

	c := New("pub", "priv")
	tests := map[string]struct {
		data      string
		wantStage DecodeStage
	}{
		"bad base64":   {data: "%%%", wantStage: DecodeStageBase64},
		"invalid utf8": {data: signature.Encode([]byte{0xff, 0xfe}), wantStage: DecodeStageBase64},
		"bad json":     {data: signature.Encode([]byte("{not json")), wantStage: DecodeStageJSON},
		"array":        {data: signature.Encode([]byte("[1,2]")), wantStage: DecodeStageJSON},
		"null":         {data: signature.Encode([]byte("null")), wantStage: DecodeStageJSON},
		"trailing":     {data: signature.Encode([]byte(`{"a":1} {"b":2}`)), wantStage: DecodeStageJSON},
	}
	for name, tc := range tests {
		_, err := c.DecodeData(tc.data)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("%s: expected *DecodeError, got %v", name, err)
		}
		if decodeErr.Stage != tc.wantStage {
			t.Fatalf("%s: expected stage %s, got %s", name, tc.wantStage, decodeErr.Stage)
		}
	}
}

func TestDecodeDataRoundTrip(t *testing.T) {
	t.Parallel()

	c := New("pub", "priv")
	in := Params{"amount": 12.5, "description": "Оплата замовлення", "sandbox": true, "order_id": "A-1"}
	data, err := c.CNBData(in)
	if err != nil {
		t.Fatalf("CNBData: %v", err)
	}
	out, err := c.DecodeData(data)
	if err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	want := Params{
		"amount":      json.Number("12.5"),
		"description": "Оплата замовлення",
		"sandbox":     json.Number("1"),
		"order_id":    "A-1",
		"public_key":  "pub",
	}
	if len(out) != len(want) {
		t.Fatalf("unexpected params %v", out)
	}
	for k, v := range want {
		if out[k] != v {
			t.Fatalf("param %s: expected %#v, got %#v", k, v, out[k])
		}
	}
}

func TestParseCallback(t *testing.T) {
	t.Parallel()

	cb, err := ParseCallback(Params{
		"action":            "pay",
		"status":            "success",
		"version":           json.Number("3"),
		"order_id":          "123456",
		"payment_id":        json.Number("165629"),
		"amount":            json.Number("10.5"),
		"currency":          "UAH",
		"sender_commission": json.Number("0.28"),
		"is_3ds":            false,
		"create_date":       json.Number("1700000000000"),
		"custom_field":      "kept",
	})
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if !cb.Successful() {
		t.Fatalf("expected successful callback")
	}
	if !cb.Amount.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("unexpected amount %s", cb.Amount)
	}
	if !cb.SenderCommission.Equal(decimal.RequireFromString("0.28")) {
		t.Fatalf("unexpected commission %s", cb.SenderCommission)
	}
	if cb.PaymentID != "165629" || cb.OrderID != "123456" || cb.CreateDate != 1700000000000 {
		t.Fatalf("unexpected callback %+v", cb)
	}
	if cb.Raw["custom_field"] != "kept" {
		t.Fatalf("expected raw params to keep unmapped fields")
	}

	_, err = ParseCallback(Params{"order_id": "1"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

type stubCallbackProvider struct {
	handle func(ctx context.Context, cb *Callback) error
}

func (s *stubCallbackProvider) HandleCallback(ctx context.Context, cb *Callback) error {
	if s.handle == nil {
		return nil
	}
	return s.handle(ctx, cb)
}

func postCallback(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "LiqPay/1.0")
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeHTTPError(t *testing.T, rec *httptest.ResponseRecorder) HTTPError {
	t.Helper()

	var payload HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestCallbackHandler(t *testing.T) {
	t.Parallel()

	client := New("your_public_key", callbackSecret)
	foreignData, foreignSig := signedCallback(t, callbackSecret, map[string]any{
		"public_key": "someone_else", "status": "success", "order_id": "1",
	})
	statuslessData, statuslessSig := signedCallback(t, callbackSecret, map[string]any{
		"public_key": "your_public_key", "order_id": "1",
	})
	badJSON := signature.Encode([]byte("{oops"))

	tests := map[string]struct {
		form       url.Values
		provider   func(ctx context.Context, cb *Callback) error
		wantStatus int
		wantCode   ErrorCode
		wantCalled bool
	}{
		"valid callback": {
			form:       url.Values{"data": {callbackData}, "signature": {callbackSignature}},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		"missing data": {
			form:       url.Values{"signature": {callbackSignature}},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCode(InvalidRequest),
		},
		"missing signature": {
			form:       url.Values{"data": {callbackData}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   SignatureRequired,
		},
		"tampered signature": {
			form:       url.Values{"data": {callbackData}, "signature": {"WIm17SaX+rd0IIs4lARrByXq7Y5="}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   InvalidSignature,
		},
		"malformed payload": {
			form:       url.Values{"data": {badJSON}, "signature": {signature.Sign(callbackSecret, []byte(badJSON))}},
			wantStatus: http.StatusBadRequest,
			wantCode:   MalformedPayload,
		},
		"foreign public key": {
			form:       url.Values{"data": {foreignData}, "signature": {foreignSig}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   InvalidPublicKey,
		},
		"missing status": {
			form:       url.Values{"data": {statuslessData}, "signature": {statuslessSig}},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCode(InvalidRequest),
		},
		"provider http error": {
			form: url.Values{"data": {callbackData}, "signature": {callbackSignature}},
			provider: func(ctx context.Context, cb *Callback) error {
				return NewHTTPError(http.StatusConflict, InvalidRequest, "duplicate_callback", "already processed")
			},
			wantStatus: http.StatusConflict,
			wantCode:   "duplicate_callback",
			wantCalled: true,
		},
		"provider failure": {
			form: url.Values{"data": {callbackData}, "signature": {callbackSignature}},
			provider: func(ctx context.Context, cb *Callback) error {
				return errors.New("database down")
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCode(ProcessingError),
			wantCalled: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			called := false
			provider := &stubCallbackProvider{handle: func(ctx context.Context, cb *Callback) error {
				called = true
				if cb.OrderID == "" {
					t.Fatalf("expected order id")
				}
				if tc.provider != nil {
					return tc.provider(ctx, cb)
				}
				return nil
			}}
			h := NewCallbackHandler(client, provider)
			rec := postCallback(h, DefaultCallbackPath, tc.form)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if called != tc.wantCalled {
				t.Fatalf("provider called = %v, want %v", called, tc.wantCalled)
			}
			if tc.wantCode != "" {
				if got := decodeHTTPError(t, rec).Code; got != tc.wantCode {
					t.Fatalf("expected code %q, got %q", tc.wantCode, got)
				}
			}
		})
	}
}

func TestCallbackHandlerPassesTypedCallback(t *testing.T) {
	t.Parallel()

	client := New("your_public_key", callbackSecret)
	var got *Callback
	var requestCtx *RequestContext
	h := NewCallbackHandler(client, CallbackProviderFunc(func(ctx context.Context, cb *Callback) error {
		got = cb
		requestCtx = RequestContextFromContext(ctx)
		return nil
	}))

	rec := postCallback(h, DefaultCallbackPath, url.Values{"data": {callbackData}, "signature": {callbackSignature}})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
	if got == nil || got.Status != StatusSuccess || !got.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected callback %+v", got)
	}
	if requestCtx == nil || requestCtx.UserAgent != "LiqPay/1.0" || requestCtx.RequestID != "req-1" {
		t.Fatalf("unexpected request context %+v", requestCtx)
	}
}

func TestCallbackHandlerOptions(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(w, r)
			}
		}
	}
	client := New("your_public_key", callbackSecret)
	h := NewCallbackHandler(client, &stubCallbackProvider{},
		WithCallbackPath("/hooks/liqpay"),
		WithMiddleware(mw("inner"), nil, mw("outer")),
	)
	if h.Path() != "/hooks/liqpay" {
		t.Fatalf("unexpected path %q", h.Path())
	}

	rec := postCallback(h, "/hooks/liqpay", url.Values{"data": {callbackData}, "signature": {callbackSignature}})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Join(order, ",") != "outer,inner" {
		t.Fatalf("unexpected middleware order %v", order)
	}

	rec = postCallback(h, DefaultCallbackPath, url.Values{})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected default path to be unrouted, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/hooks/liqpay", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", rec.Code)
	}
}
