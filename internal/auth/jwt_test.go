package auth

import (
	"testing"
	"time"

	"campushire/pkg/config"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSigningKey:  "access-key",
		RefreshSigningKey: "refresh-key",
		AccessExpiry:      15 * time.Minute,
		RefreshExpiry:     7 * 24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	j := NewJWTUtil(testConfig())

	token, err := j.GenerateAccessToken(42)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	userID, err := j.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	j := NewJWTUtil(testConfig())

	access, err := j.GenerateAccessToken(42)
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := j.GenerateRefreshToken(42)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := j.VerifyRefreshToken(access); err == nil {
		t.Error("access token must not verify as refresh token")
	}
	if _, err := j.VerifyAccessToken(refresh); err == nil {
		t.Error("refresh token must not verify as access token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AccessExpiry = -time.Minute
	j := NewJWTUtil(cfg)

	token, err := j.GenerateAccessToken(42)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := j.VerifyAccessToken(token); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	j := NewJWTUtil(testConfig())
	if _, err := j.VerifyAccessToken("not-a-jwt"); err == nil {
		t.Error("garbage must be rejected")
	}
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	j := NewJWTUtil(testConfig())

	a, err := j.GenerateRefreshToken(42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := j.GenerateRefreshToken(42)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two issues for the same user must differ")
	}
}

func TestOneTimeTokenExpiry(t *testing.T) {
	tok := NewOneTimeToken(10 * time.Minute)
	if len(tok.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(tok.Token))
	}
	if !tok.ExpiresAt.After(time.Now()) {
		t.Error("expiry should be in the future")
	}

	other := NewOneTimeToken(10 * time.Minute)
	if tok.Token == other.Token {
		t.Error("tokens must be unique")
	}
}

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("secret")
	if err != nil {
		t.Fatal(err)
	}
	if !h.Verify("secret", hash) {
		t.Error("correct password should verify")
	}
	if h.Verify("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}
