package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsdevtools/client1/internal/apps"
	"github.com/jsdevtools/client1/internal/auth"
	"github.com/jsdevtools/client1/internal/auth/handler"
	"github.com/jsdevtools/client1/internal/auth/provider"
	"github.com/jsdevtools/client1/internal/redirect"
	"github.com/jsdevtools/client1/internal/session"
)

const (
	client1Base = "http://localhost:3001"
	goodEmail   = "jane@example.com"
	goodPass    = "correct-horse"
)

// fakeLocal resolves a fixed email/password pair in a single call.
type fakeLocal struct{}

func (fakeLocal) Name() string { return "local" }

func (fakeLocal) Authenticate(_ context.Context, req provider.Request) (provider.Result, error) {
	if req.Email == goodEmail && req.Password == goodPass {
		return provider.Result{Identity: &auth.Identity{
			Provider: "local",
			Subject:  "user-1",
			Email:    goodEmail,
		}}, nil
	}
	return provider.Result{Failure: &provider.Failure{Reason: "invalid_credentials"}}, nil
}

// fakeFederated models the two-call redirect handshake: Pending on
// dispatch, identity (or rejection) on callback.
type fakeFederated struct{}

func (fakeFederated) Name() string { return "fedprov" }

func (fakeFederated) Authenticate(_ context.Context, req provider.Request) (provider.Result, error) {
	if !req.Callback {
		return provider.Result{Pending: &provider.Pending{
			RedirectURL: "https://idp.example.com/authorize?state=" + url.QueryEscape(req.State),
		}}, nil
	}
	if req.Code == "good-code" {
		return provider.Result{Identity: &auth.Identity{
			Provider: "fedprov",
			Subject:  "fed-user-9",
			Email:    "fed@example.com",
		}}, nil
	}
	return provider.Result{Failure: &provider.Failure{Reason: "provider_rejected"}}, nil
}

func newSurface(t *testing.T) (*gin.Engine, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore()
	binder := session.NewBinder(store, time.Hour)

	registry := provider.NewRegistry(fakeFederated{}, fakeLocal{})
	applications := apps.NewRegistry(
		apps.Application{Slug: "client1", BaseURL: client1Base},
		apps.Application{Slug: "client2", BaseURL: "http://localhost:3002"},
	)
	redirects := redirect.NewCoordinator(applications, "")

	h := handler.NewHandler(
		registry, binder, applications, redirects,
		session.CookieOptions{}, "client1", false,
	)

	router := gin.New()
	h.RegisterRoutes(router)
	router.GET("/logout", h.Logout)

	return router, store
}

func do(
	router *gin.Engine,
	method, target, form string,
	cookies []*http.Cookie,
) *httptest.ResponseRecorder {

	var req *http.Request
	if form != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// merge keeps a browser-like cookie set across requests.
func merge(jar []*http.Cookie, res *http.Response) []*http.Cookie {
	for _, c := range res.Cookies() {
		replaced := false
		for i, existing := range jar {
			if existing.Name == c.Name {
				jar[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			jar = append(jar, c)
		}
	}
	// Drop cleared cookies.
	kept := jar[:0]
	for _, c := range jar {
		if c.MaxAge >= 0 && c.Value != "" {
			kept = append(kept, c)
		}
	}
	return kept
}

func cookieValue(jar []*http.Cookie, name string) string {
	for _, c := range jar {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestChooserListsProviders(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodGet, "/login/client1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, "/login/client1/fedprov")
	require.Contains(t, body, `action="/login/client1/local"`)
}

func TestChooserUnknownApp(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodGet, "/login/intruder", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestChooserShowsErrorIndicator(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodGet, "/login/client1?error=invalid_credentials", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "email or password")
}

func TestDispatchUnknownProvider(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodGet, "/login/client1/nosuch", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Provider unavailable")
}

func TestLocalLoginRejected(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodPost, "/login/client1/local",
		"email=jane%40example.com&password=wrong-pass", nil)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login/client1?error=invalid_credentials", w.Header().Get("Location"))

	// No session was bound.
	for _, c := range w.Result().Cookies() {
		require.NotEqual(t, session.CookieName, c.Name)
	}
}

func TestLocalLoginLogoutScenario(t *testing.T) {
	router, store := newSurface(t)
	ctx := context.Background()

	// Login with valid credentials.
	w := do(router, http.MethodPost, "/login/client1/local",
		"email=jane%40example.com&password=correct-horse", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, client1Base, w.Header().Get("Location"))

	jar := merge(nil, w.Result())
	sid := cookieValue(jar, session.CookieName)
	require.NotEmpty(t, sid)

	// The session id never appears in a redirect URL.
	require.NotContains(t, w.Header().Get("Location"), sid)

	// The store holds the bound record.
	s, err := store.Get(ctx, sid)
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	require.Equal(t, "local", s.Identity.Provider)
	require.Equal(t, "user-1", s.Identity.Subject)

	// Logout destroys the record, clears the cookie, redirects to the
	// login surface (never straight to a client application).
	w = do(router, http.MethodGet, "/logout", "", jar)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login/client1", w.Header().Get("Location"))

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			require.Empty(t, c.Value)
			require.Negative(t, c.MaxAge)
			cleared = true
		}
	}
	require.True(t, cleared)

	s, err = store.Get(ctx, sid)
	require.NoError(t, err)
	require.Nil(t, s)

	// Logout is idempotent.
	w = do(router, http.MethodGet, "/logout", "", jar)
	require.Equal(t, http.StatusFound, w.Code)
}

func TestFederatedLoginScenario(t *testing.T) {
	router, store := newSurface(t)

	// Dispatch: Pending redirect to the provider, correlation cookies set.
	w := do(router, http.MethodGet, "/login/client1/fedprov", "", nil)
	require.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "https://idp.example.com/authorize?state="))

	jar := merge(nil, w.Result())
	state := cookieValue(jar, "__oauth_state")
	require.NotEmpty(t, state)
	require.Equal(t, "client1/fedprov", cookieValue(jar, "__login_flow"))

	// Callback with the matching correlation token completes binding.
	w = do(router, http.MethodGet,
		"/oauth/callback/fedprov?state="+url.QueryEscape(state)+"&code=good-code",
		"", jar)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, client1Base, w.Header().Get("Location"))

	jar = merge(jar, w.Result())
	sid := cookieValue(jar, session.CookieName)
	require.NotEmpty(t, sid)

	s, err := store.Get(context.Background(), sid)
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	require.Equal(t, "fedprov", s.Identity.Provider)
	require.Equal(t, "fed-user-9", s.Identity.Subject)
}

func TestFederatedCallbackMismatchedState(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodGet, "/login/client1/fedprov", "", nil)
	jar := merge(nil, w.Result())

	w = do(router, http.MethodGet,
		"/oauth/callback/fedprov?state=forged&code=good-code", "", jar)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login/client1?error=invalid_state", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		require.NotEqual(t, session.CookieName, c.Name)
	}
}

func TestFederatedCallbackExpiredFlow(t *testing.T) {
	router, _ := newSurface(t)

	// No flow cookie at all: the handshake was abandoned or expired.
	w := do(router, http.MethodGet,
		"/oauth/callback/fedprov?state=whatever&code=good-code", "", nil)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login/client1?error=login_expired", w.Header().Get("Location"))
}

func TestFederatedCallbackProviderError(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodGet, "/login/client1/fedprov", "", nil)
	jar := merge(nil, w.Result())
	state := cookieValue(jar, "__oauth_state")

	w = do(router, http.MethodGet,
		"/oauth/callback/fedprov?state="+url.QueryEscape(state)+"&error=access_denied",
		"", jar)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login/client1?error=provider_rejected", w.Header().Get("Location"))
}

func TestFederatedCallbackRejectedCode(t *testing.T) {
	router, _ := newSurface(t)

	w := do(router, http.MethodGet, "/login/client1/fedprov", "", nil)
	jar := merge(nil, w.Result())
	state := cookieValue(jar, "__oauth_state")

	w = do(router, http.MethodGet,
		"/oauth/callback/fedprov?state="+url.QueryEscape(state)+"&code=bad-code",
		"", jar)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login/client1?error=provider_rejected", w.Header().Get("Location"))
}
