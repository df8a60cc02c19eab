package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

var rawKeyPattern = regexp.MustCompile(`^sk_[0-9a-f]{64}$`)

func intPtr(v int) *int { return &v }

func signupUser(t *testing.T, svc *Service) string {
	t.Helper()
	session, err := svc.Signup(context.Background(), "owner@x.com", "secret1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	return session.User.ID
}

func TestCreateAPIKeyShape(t *testing.T) {
	svc := newTestService(t)
	owner := signupUser(t, svc)
	ctx := context.Background()

	key, err := svc.CreateAPIKey(ctx, owner, "ci-key", nil)
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	if !rawKeyPattern.MatchString(key.Key) {
		t.Fatalf("unexpected raw key format: %s", key.Key)
	}
	if key.ExpiresAt != nil {
		t.Fatalf("expected nil expiry, got %v", key.ExpiresAt)
	}
	if key.ID == key.Key {
		t.Fatal("record id must be distinct from the raw key")
	}

	principal, err := svc.ValidateAPIKey(ctx, key.Key)
	if err != nil {
		t.Fatalf("ValidateAPIKey: %v", err)
	}
	if principal.Subject != owner || principal.Kind != KindService {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestListAPIKeysNeverExposesSecret(t *testing.T) {
	svc := newTestService(t)
	owner := signupUser(t, svc)
	ctx := context.Background()

	created, err := svc.CreateAPIKey(ctx, owner, "ci-key", intPtr(30))
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	items, err := svc.ListAPIKeys(ctx, owner)
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 key, got %d", len(items))
	}
	item := items[0]
	if item.KeyPreview != created.Key[:10]+"..." {
		t.Fatalf("unexpected preview: %s", item.KeyPreview)
	}
	if strings.Contains(item.KeyPreview, created.Key) || item.KeyPreview == created.Key {
		t.Fatal("list must not contain the raw secret")
	}
	if item.ExpiresAt == nil {
		t.Fatal("expected expiry to be set")
	}
}

func TestRevokeAPIKey(t *testing.T) {
	svc := newTestService(t)
	owner := signupUser(t, svc)
	ctx := context.Background()

	key, err := svc.CreateAPIKey(ctx, owner, "ci-key", nil)
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	if err := svc.RevokeAPIKey(ctx, owner, key.ID); err != nil {
		t.Fatalf("RevokeAPIKey: %v", err)
	}
	if _, err := svc.ValidateAPIKey(ctx, key.Key); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for revoked key, got %v", err)
	}

	// Revoking again is a silent no-op.
	if err := svc.RevokeAPIKey(ctx, owner, key.ID); err != nil {
		t.Fatalf("second revoke: %v", err)
	}

	if err := svc.RevokeAPIKey(ctx, owner, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.RevokeAPIKey(ctx, "other-user", key.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestValidateAPIKeyExpiry(t *testing.T) {
	svc := newTestService(t)
	owner := signupUser(t, svc)
	ctx := context.Background()

	// expiresInDays=0 produces a key that is already expired.
	key, err := svc.CreateAPIKey(ctx, owner, "short-lived", intPtr(0))
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	if _, err := svc.ValidateAPIKey(ctx, key.Key); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired key, got %v", err)
	}
}

func TestValidateAPIKeyUnknown(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.ValidateAPIKey(context.Background(), "sk_"+strings.Repeat("0", 64)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateAPIKeyTouchesLastUsed(t *testing.T) {
	svc := newTestService(t)
	owner := signupUser(t, svc)
	ctx := context.Background()

	key, err := svc.CreateAPIKey(ctx, owner, "ci-key", nil)
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	if _, err := svc.ValidateAPIKey(ctx, key.Key); err != nil {
		t.Fatalf("ValidateAPIKey: %v", err)
	}

	// The touch is asynchronous; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		items, err := svc.ListAPIKeys(ctx, owner)
		if err != nil {
			t.Fatalf("ListAPIKeys: %v", err)
		}
		if len(items) == 1 && items[0].LastUsedAt != nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("last_used_at was not updated")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
