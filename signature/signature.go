package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidSignature is returned by verifiers when the candidate signature
// does not match the payload.
var ErrInvalidSignature = errors.New("signature: invalid signature")

// Verifier validates the authenticity of a callback payload.
type Verifier interface {
	Verify(payload []byte, candidate string) error
}

// VerifierFunc lifts bare functions into [Verifier].
type VerifierFunc func(payload []byte, candidate string) error

// Verify delegates to the wrapped function.
func (f VerifierFunc) Verify(payload []byte, candidate string) error {
	return f(payload, candidate)
}

// SHA1Verifier validates signatures produced by [Sign] with the merchant
// private key.
type SHA1Verifier struct {
	Secret string
}

// Verify implements [Verifier] by recomputing the expected signature.
func (v SHA1Verifier) Verify(payload []byte, candidate string) error {
	if !Verify(v.Secret, payload, candidate) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns base64(sha1(secret + payload + secret)).
func Sign(secret string, payload []byte) string {
	h := sha1.New()
	h.Write([]byte(secret))
	h.Write(payload)
	h.Write([]byte(secret))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Verify recomputes the signature of payload and compares it with candidate
// in constant time.
func Verify(secret string, payload []byte, candidate string) bool {
	if candidate == "" {
		return false
	}
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(candidate))
}

// SignFields returns base64(sha1(secret + fields...)), the per-field scheme
// of the pre-v3 checkout.
func SignFields(secret string, fields ...string) string {
	var b strings.Builder
	b.WriteString(secret)
	for _, f := range fields {
		b.WriteString(f)
	}
	sum := sha1.Sum([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SignString returns base64(sha1(s)).
func SignString(s string) string {
	sum := sha1.Sum([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}
