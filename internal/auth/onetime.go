package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// OneTimeToken is a single-use random token with its expiry. Both values
// live inline on the user row; generating a new token for the same purpose
// overwrites the previous one, so a resend silently invalidates the link
// already in someone's inbox.
type OneTimeToken struct {
	Token     string
	ExpiresAt time.Time
}

// NewOneTimeToken creates a 32-byte random token, hex encoded
func NewOneTimeToken(ttl time.Duration) OneTimeToken {
	return OneTimeToken{
		Token:     randomHex(32),
		ExpiresAt: time.Now().Add(ttl),
	}
}

// NewTempPassword creates a random temporary password for admin invitations
func NewTempPassword() string {
	return randomHex(8)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
