package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"authgate.org/internal/auth"
	"authgate.org/internal/obs"
)

const (
	authHeader   = "Authorization"
	bearerScheme = "Bearer "
	apiKeyHeader = "x-api-key"
)

// withAuth authenticates the request through the guard and attaches the
// resulting principal to the context. Rejection messages stay generic so
// the response never reveals which internal check failed.
func (a *API) withAuth(guard *auth.Guard, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bearer := extractBearerToken(r.Header.Get(authHeader))
		apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))

		principal, err := guard.Authenticate(r.Context(), bearer, apiKey)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrNoCredentials):
				obs.CountAuthFailure("none")
				writeError(w, r, http.StatusUnauthorized,
					"Authentication required: provide Bearer token or x-api-key header")
			case errors.Is(err, auth.ErrUnauthorized):
				if bearer != "" {
					obs.CountAuthFailure("bearer")
					writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
				} else {
					obs.CountAuthFailure("api_key")
					writeError(w, r, http.StatusUnauthorized, "Invalid API key")
				}
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next(w, r.WithContext(ctx))
	}
}

// extractBearerToken returns the token from a well-formed "Bearer <token>"
// header, or empty when the header is absent or uses another scheme.
func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, bearerScheme) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerScheme):])
}
