package auth

import "time"

// User is an account that authenticates with email and password.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// APIKey is a long-lived credential for service-to-service calls. Only a
// SHA-256 digest of the raw secret is persisted; KeyPrefix keeps the first
// few characters of the raw secret for display.
type APIKey struct {
	ID         string
	KeyHash    string
	KeyPrefix  string
	OwnerID    string
	Name       string
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	Revoked    bool
	LastUsedAt *time.Time
}

// PrincipalKind distinguishes how a request authenticated.
type PrincipalKind string

const (
	KindUser    PrincipalKind = "user"
	KindService PrincipalKind = "service"
)

// Principal is the uniform result of a successful authentication check.
type Principal struct {
	Subject string
	Email   string
	Kind    PrincipalKind
}

// PublicUser is the externally visible view of a user record.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is returned by signup and login.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        PublicUser
}

// APIKeyPatch describes a partial update applied to a stored key.
// Nil fields are left untouched.
type APIKeyPatch struct {
	Revoked    *bool
	LastUsedAt *time.Time
}
