// Package httpapi exposes the gateway over HTTP.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"authgate.org/internal/auth"
	"authgate.org/internal/obs"
)

// ReadyProbe reports whether the backing store is reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	svc        *auth.Service
	userGuard  *auth.Guard
	anyGuard   *auth.Guard
	readyProbe ReadyProbe
	version    string
}

// New wires routes over the authentication service.
func New(svc *auth.Service, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		svc:        svc,
		userGuard:  auth.NewGuard(svc, auth.ModeUserOnly),
		anyGuard:   auth.NewGuard(svc, auth.ModeUserOrService),
		readyProbe: rp,
		version:    version,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/auth/signup", a.handleSignup)
	a.mux.HandleFunc("/auth/login", a.handleLogin)

	a.mux.HandleFunc("/keys/create", a.withAuth(a.userGuard, a.handleCreateKey))
	a.mux.HandleFunc("/keys", a.withAuth(a.userGuard, a.handleListKeys))
	a.mux.HandleFunc("/keys/", a.withAuth(a.userGuard, a.handleRevokeKey))

	a.mux.HandleFunc("/user-only", a.withAuth(a.userGuard, a.handleUserOnly))
	a.mux.HandleFunc("/protected", a.withAuth(a.anyGuard, a.handleProtected))
	a.mux.HandleFunc("/data", a.withAuth(a.anyGuard, a.handleData))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = obs.Instrument(h)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return h
}
