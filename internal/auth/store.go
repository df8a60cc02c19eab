package auth

import "context"

// Store describes persistence operations required by the gateway.
type Store interface {
	Users(ctx context.Context) UserStore
	APIKeys(ctx context.Context) APIKeyStore
}

// UserStore manages user accounts.
type UserStore interface {
	// Create persists a new user. Returns ErrAlreadyExists when the email
	// is taken.
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// APIKeyStore manages API key records. Keys are never physically deleted;
// revocation is the deletion substitute.
type APIKeyStore interface {
	Create(ctx context.Context, k *APIKey) error
	FindByHash(ctx context.Context, hash string) (*APIKey, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*APIKey, error)
	// Update applies the non-nil fields of patch to the record with the
	// given id. Returns ErrNotFound for an unknown id.
	Update(ctx context.Context, id string, patch APIKeyPatch) (*APIKey, error)
}
