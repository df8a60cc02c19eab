package auth

import (
	"context"
	"errors"
)

// Mode selects which credential schemes a Guard accepts.
type Mode int

const (
	// ModeUserOnly accepts bearer tokens only.
	ModeUserOnly Mode = iota
	// ModeUserOrService accepts bearer tokens or API keys.
	ModeUserOrService
)

// Guard is the per-request credential decision policy. Bearer tokens take
// strict precedence: when one is present and fails, the request is
// rejected without consulting the API key.
type Guard struct {
	svc  *Service
	mode Mode
}

// NewGuard constructs a Guard over the service.
func NewGuard(svc *Service, mode Mode) *Guard {
	return &Guard{svc: svc, mode: mode}
}

// Authenticate evaluates the presented credential material and returns
// the resulting principal. bearerToken and apiKey are the extracted header
// values; either may be empty.
func (g *Guard) Authenticate(ctx context.Context, bearerToken, apiKey string) (Principal, error) {
	if bearerToken != "" {
		principal, err := g.svc.AuthenticateToken(ctx, bearerToken)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrUnauthorized) {
				return Principal{}, ErrUnauthorized
			}
			return Principal{}, err
		}
		return principal, nil
	}

	if g.mode == ModeUserOrService && apiKey != "" {
		principal, err := g.svc.ValidateAPIKey(ctx, apiKey)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
				return Principal{}, ErrUnauthorized
			}
			return Principal{}, err
		}
		return principal, nil
	}

	return Principal{}, ErrNoCredentials
}
