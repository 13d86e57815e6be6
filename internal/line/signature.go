// Package line is a minimal LINE Messaging API client: webhook signature
// checks, webhook event decoding and the reply endpoint.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// ErrInvalidSignature is returned when a webhook body does not match its signature.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign returns the base64 HMAC-SHA256 of body keyed by the channel secret.
func Sign(channelSecret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(channelSecret))
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateSignature checks the X-Line-Signature header value against body
func ValidateSignature(channelSecret, signature string, body []byte) error {
	if channelSecret == "" || signature == "" {
		return ErrInvalidSignature
	}

	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}

	h := hmac.New(sha256.New, []byte(channelSecret))
	h.Write(body)
	if !hmac.Equal(got, h.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}
