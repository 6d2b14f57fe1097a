package jwtutil_test

import (
	"testing"
	"time"

	"finbro-chat/internal/pkg/jwtutil"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("secret", time.Hour, 42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken err: %v", err)
	}

	claims, err := jwtutil.ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken err: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected username alice, got %q", claims.Username)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := jwtutil.GenerateToken("secret", time.Hour, 42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken err: %v", err)
	}

	if _, err := jwtutil.ParseToken("other", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := jwtutil.GenerateToken("secret", -time.Minute, 42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken err: %v", err)
	}

	if _, err := jwtutil.ParseToken("secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := jwtutil.ParseToken("secret", "not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
