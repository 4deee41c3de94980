// Package webhook authenticates and decodes settlement notifications.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the HMAC of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

const signaturePrefix = "sha256="

// Sign returns the header value for body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header is the HMAC-SHA256 of the exact raw body under
// secret. A missing header or secret never verifies.
func Verify(body []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}

	hexDigest, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}

	got, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(got, mac.Sum(nil))
}
