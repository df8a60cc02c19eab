package httpapi

import (
	"net/http"

	"authgate.org/internal/auth"
)

type principalView struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Type   string `json:"type"`
}

func viewOf(p auth.Principal) principalView {
	return principalView{
		UserID: p.Subject,
		Email:  p.Email,
		Type:   string(p.Kind),
	}
}

func (a *API) handleUserOnly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "This route is accessible only by authenticated users",
		"user":    viewOf(principal),
	})
}

func (a *API) handleProtected(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "This route accepts both bearer tokens and API keys",
		"user":       viewOf(principal),
		"accessType": string(principal.Kind),
	})
}

func (a *API) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"data": []map[string]any{
			{"id": 1, "name": "Item 1"},
			{"id": 2, "name": "Item 2"},
			{"id": 3, "name": "Item 3"},
		},
		"accessedBy": viewOf(principal),
	})
}
