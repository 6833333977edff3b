package gscript

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer signs webhook bodies so the script can reject forged calls.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the hex HMAC-SHA256 of payload.
func (s *Signer) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches payload.
func (s *Signer) Verify(payload []byte, signature string) bool {
	return hmac.Equal([]byte(s.Sign(payload)), []byte(signature))
}
