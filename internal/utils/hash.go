package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// OpaqueTokenBytes is the entropy behind every emailed verification or reset
// link.
const OpaqueTokenBytes = 32

// NewOpaqueToken returns a random URL-safe token together with its digest.
// The raw value only ever leaves the service inside an email; the digest is
// what gets stored and looked up.
func NewOpaqueToken() (raw string, digest string, err error) {
	buffer := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(buffer); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(buffer)
	return raw, TokenDigest(raw), nil
}

// TokenDigest is the hex sha256 of a raw token.
func TokenDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
