package auth

import (
	"testing"
	"time"
)

func TestTokenIssueAndVerify(t *testing.T) {
	svc, err := NewTokenService("test-secret", "authgate-test")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	user := &User{ID: "user-42", Email: "u@example.com"}
	token, exp, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiration, got %v", exp)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Email != "u@example.com" {
		t.Fatalf("unexpected email: %s", claims.Email)
	}
	if claims.Type != string(KindUser) {
		t.Fatalf("unexpected type: %s", claims.Type)
	}
}

func TestTokenVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenService("secret-one", "authgate-test")
	verifier, _ := NewTokenService("secret-two", "authgate-test")

	token, _, err := issuer.Issue(&User{ID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc, _ := NewTokenService("test-secret", "authgate-test",
		WithTokenTTL(time.Minute), WithTokenClock(clock))

	token, _, err := svc.Issue(&User{ID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := svc.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenVerifyRejectsGarbage(t *testing.T) {
	svc, _ := NewTokenService("test-secret", "authgate-test")
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(tok); err != ErrInvalidToken {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestTokenVerifyRejectsWrongIssuer(t *testing.T) {
	issuer, _ := NewTokenService("test-secret", "other-service")
	verifier, _ := NewTokenService("test-secret", "authgate-test")

	token, _, err := issuer.Issue(&User{ID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("  ", "authgate"); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
