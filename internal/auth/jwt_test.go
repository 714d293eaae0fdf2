package auth

import (
	"testing"
	"time"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("recruiter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "recruiter" || claims.Username != "recruiter" || claims.Issuer != issuer {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
	if _, err := NewJWTManager("other", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("expected parse error for foreign secret")
	}
}

func TestJWTManager_Expiry(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	issued := time.Now()
	manager.now = func() time.Time { return issued }
	token, err := manager.GenerateToken("recruiter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := manager.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestJWTManager_Defaults(t *testing.T) {
	if ttl := NewJWTManager("secret", 0).TTL(); ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", ttl)
	}

	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("recruiter"); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}
