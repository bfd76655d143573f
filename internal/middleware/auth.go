package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/jsdevtools/client1/internal/auth"
	"github.com/jsdevtools/client1/internal/logger"
	"github.com/jsdevtools/client1/internal/session"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// Decision is the gate's answer for one request.
type Decision struct {
	Authenticated bool
	Session       *session.Session
}

// Gate decides authenticated/unauthenticated per request from the
// session cookie and the shared store. It never calls an identity
// provider; authentication state is cached in the session record for
// the session's lifetime.
type Gate struct {
	store   session.Store
	binder  *session.Binder
	cookies session.CookieOptions
}

func NewGate(
	store session.Store,
	binder *session.Binder,
	cookies session.CookieOptions,
) *Gate {
	return &Gate{
		store:   store,
		binder:  binder,
		cookies: cookies,
	}
}

// Decide inspects the request without side effects. A missing cookie,
// unknown or expired session, or anonymous session is Unauthenticated.
// Store errors fail closed to Unauthenticated so a store outage
// degrades to re-login instead of a server error; a malformed cookie is
// treated identically to an absent one.
func (g *Gate) Decide(r *http.Request) Decision {
	sessionID := session.FromRequest(r)
	if sessionID == "" {
		return Decision{}
	}

	s, err := g.store.Get(r.Context(), sessionID)
	if err != nil {
		logger.Error("session store unavailable, failing closed", map[string]any{
			"error": err.Error(),
		})
		return Decision{}
	}
	if s == nil || s.Expired(time.Now()) || !s.Authenticated() {
		return Decision{}
	}

	return Decision{Authenticated: true, Session: s}
}

// Authenticate is Decide plus the authenticated side effects: the
// sliding expiry advances and the cookie is re-issued with the new
// deadline, keeping the store TTL and cookie TTL consistent. A failed
// touch is logged but does not revoke the decision; the record itself
// was read successfully.
func (g *Gate) Authenticate(w http.ResponseWriter, r *http.Request) Decision {
	d := g.Decide(r)
	if !d.Authenticated {
		return d
	}

	if err := g.binder.Touch(r.Context(), d.Session); err != nil {
		logger.Warn("session touch failed", map[string]any{
			"error": err.Error(),
		})
	}

	session.SetCookie(w, d.Session.SessionID, d.Session.ExpiresAt, g.cookies)
	return d
}

// AuthMiddleware guards application routes: unauthenticated page
// requests are redirected to the shared login surface for this
// application, authenticated ones proceed with the identity attached to
// the request context.
type AuthMiddleware struct {
	Gate *Gate

	// LoginURL is this application's login surface target, computed
	// once at startup from the allow-list.
	LoginURL string
}

func NewAuthMiddleware(gate *Gate, loginURL string) *AuthMiddleware {
	return &AuthMiddleware{Gate: gate, LoginURL: loginURL}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := a.Gate.Authenticate(w, r)
		if !d.Authenticated {
			http.Redirect(w, r, a.LoginURL, http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, d.Session.Identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
