package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"authgate.org/internal/ids"
)

const (
	keyPrefix      = "sk_"
	keySecretBytes = 32
	keyPreviewLen  = 10
)

// NewAPIKey is returned by CreateAPIKey. Key holds the raw secret and is
// the only place it ever appears; the store keeps a digest.
type NewAPIKey struct {
	ID        string
	Key       string
	Name      string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// APIKeyListItem is the metadata view returned by ListAPIKeys.
type APIKeyListItem struct {
	ID         string
	Name       string
	KeyPreview string
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	Revoked    bool
	LastUsedAt *time.Time
}

// HashAPIKey returns the hex SHA-256 digest stored for a raw key.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// CreateAPIKey generates a new key for the owner. The raw secret is
// returned exactly once and never persisted. A nil expiresInDays means the
// key never expires; zero produces a key that is already expired.
func (s *Service) CreateAPIKey(ctx context.Context, ownerID, name string, expiresInDays *int) (NewAPIKey, error) {
	if ownerID == "" || name == "" {
		return NewAPIKey{}, ErrInvalidInput
	}

	secret := make([]byte, keySecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return NewAPIKey{}, err
	}
	rawKey := keyPrefix + hex.EncodeToString(secret)

	now := s.now().UTC()
	var expiresAt *time.Time
	if expiresInDays != nil {
		t := now.Add(time.Duration(*expiresInDays) * 24 * time.Hour)
		expiresAt = &t
	}

	key := &APIKey{
		ID:        ids.New(),
		KeyHash:   HashAPIKey(rawKey),
		KeyPrefix: rawKey[:keyPreviewLen] + "...",
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.store.APIKeys(ctx).Create(ctx, key); err != nil {
		return NewAPIKey{}, err
	}

	return NewAPIKey{
		ID:        key.ID,
		Key:       rawKey,
		Name:      key.Name,
		CreatedAt: key.CreatedAt,
		ExpiresAt: key.ExpiresAt,
	}, nil
}

// ListAPIKeys returns metadata for all keys owned by the user. The raw
// secret is absent; KeyPreview was captured at creation time.
func (s *Service) ListAPIKeys(ctx context.Context, ownerID string) ([]APIKeyListItem, error) {
	keys, err := s.store.APIKeys(ctx).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	items := make([]APIKeyListItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, APIKeyListItem{
			ID:         k.ID,
			Name:       k.Name,
			KeyPreview: k.KeyPrefix,
			CreatedAt:  k.CreatedAt,
			ExpiresAt:  k.ExpiresAt,
			Revoked:    k.Revoked,
			LastUsedAt: k.LastUsedAt,
		})
	}
	return items, nil
}

// RevokeAPIKey marks a key revoked. Returns ErrNotFound when no key with
// that id is owned by the user. Revoking an already-revoked key succeeds.
func (s *Service) RevokeAPIKey(ctx context.Context, ownerID, keyID string) error {
	keys, err := s.store.APIKeys(ctx).ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	var target *APIKey
	for _, k := range keys {
		if k.ID == keyID {
			target = k
			break
		}
	}
	if target == nil {
		return ErrNotFound
	}
	if target.Revoked {
		return nil
	}
	revoked := true
	_, err = s.store.APIKeys(ctx).Update(ctx, target.ID, APIKeyPatch{Revoked: &revoked})
	return err
}

// ValidateAPIKey checks a presented raw key. Returns ErrNotFound when the
// digest matches no record, ErrUnauthorized when the key is revoked or
// expired. On success the last-used timestamp is updated without blocking
// the caller.
func (s *Service) ValidateAPIKey(ctx context.Context, rawKey string) (Principal, error) {
	if rawKey == "" {
		return Principal{}, ErrNotFound
	}
	key, err := s.store.APIKeys(ctx).FindByHash(ctx, HashAPIKey(rawKey))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrNotFound
		}
		return Principal{}, err
	}
	if key.Revoked {
		return Principal{}, ErrUnauthorized
	}
	if key.ExpiresAt != nil && !key.ExpiresAt.After(s.now()) {
		return Principal{}, ErrUnauthorized
	}

	// Best-effort touch.
	touched := s.now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = s.store.APIKeys(ctx).Update(ctx, key.ID, APIKeyPatch{LastUsedAt: &touched})
	}()

	return Principal{Subject: key.OwnerID, Kind: KindService}, nil
}
