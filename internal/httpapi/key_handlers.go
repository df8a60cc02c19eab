package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"authgate.org/internal/auth"
)

type createKeyRequest struct {
	Name          string `json:"name"`
	ExpiresInDays *int   `json:"expiresInDays"`
}

func (a *API) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if req.ExpiresInDays != nil && *req.ExpiresInDays < 0 {
		writeError(w, r, http.StatusBadRequest, "expiresInDays must not be negative")
		return
	}

	key, err := a.svc.CreateAPIKey(r.Context(), principal.Subject, strings.TrimSpace(req.Name), req.ExpiresInDays)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        key.ID,
		"key":       key.Key, // raw secret, shown once
		"name":      key.Name,
		"createdAt": key.CreatedAt.UTC(),
		"expiresAt": jsonTime(key.ExpiresAt),
	})
}

func (a *API) handleListKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	keys, err := a.svc.ListAPIKeys(r.Context(), principal.Subject)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		items = append(items, map[string]any{
			"id":         k.ID,
			"name":       k.Name,
			"keyPreview": k.KeyPreview,
			"createdAt":  k.CreatedAt.UTC(),
			"expiresAt":  jsonTime(k.ExpiresAt),
			"revoked":    k.Revoked,
			"lastUsedAt": jsonTime(k.LastUsedAt),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	keyID := strings.TrimPrefix(r.URL.Path, "/keys/")
	if keyID == "" || strings.Contains(keyID, "/") {
		writeError(w, r, http.StatusNotFound, "API key not found")
		return
	}

	if err := a.svc.RevokeAPIKey(r.Context(), principal.Subject, keyID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "API key not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "API key revoked successfully",
	})
}
