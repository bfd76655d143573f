package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsdevtools/client1/internal/apps"
	"github.com/jsdevtools/client1/internal/auth"
	"github.com/jsdevtools/client1/internal/auth/provider"
	"github.com/jsdevtools/client1/internal/logger"
	"github.com/jsdevtools/client1/internal/redirect"
	"github.com/jsdevtools/client1/internal/session"
)

// Handler is the shared login surface: provider chooser, provider
// dispatch, federated callback, and logout. It is mounted on whichever
// process has the login surface enabled; logout is mounted everywhere.
type Handler struct {
	providers    *provider.Registry
	binder       *session.Binder
	applications *apps.Registry
	redirects    *redirect.Coordinator

	sessionCookies session.CookieOptions
	cookieSecure   bool

	// defaultApp is the slug shown when no originating application is
	// known (bare /login, or a callback whose flow cookie expired).
	defaultApp string

	// dev enables error detail in responses. Production responses stay
	// generic; full detail is always logged server-side.
	dev bool
}

func NewHandler(
	registry *provider.Registry,
	binder *session.Binder,
	applications *apps.Registry,
	redirects *redirect.Coordinator,
	sessionCookies session.CookieOptions,
	defaultApp string,
	dev bool,
) *Handler {
	return &Handler{
		providers:      registry,
		binder:         binder,
		applications:   applications,
		redirects:      redirects,
		sessionCookies: sessionCookies,
		cookieSecure:   sessionCookies.Secure,
		defaultApp:     defaultApp,
		dev:            dev,
	}
}

// RegisterRoutes mounts the login surface endpoints.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/login", h.chooserDefault)
	r.GET("/login/:app", h.chooser)
	r.GET("/login/:app/:provider", h.dispatch)
	r.POST("/login/:app/:provider", h.dispatch)
	r.GET("/oauth/callback/:provider", h.callback)
}

func (h *Handler) chooserDefault(c *gin.Context) {
	h.renderChooser(c, h.defaultApp, c.Query("error"))
}

func (h *Handler) chooser(c *gin.Context) {
	h.renderChooser(c, c.Param("app"), c.Query("error"))
}

func (h *Handler) renderChooser(c *gin.Context, appSlug, errCode string) {
	if _, err := h.applications.Get(appSlug); err != nil {
		h.renderError(c, http.StatusNotFound,
			"Unknown application",
			"This application is not part of the sign-on deployment.",
			nil)
		return
	}

	var federated []string
	local := false
	for _, name := range h.providers.Names() {
		if name == "local" {
			local = true
			continue
		}
		federated = append(federated, name)
	}

	data := gin.H{
		"App":          appSlug,
		"Federated":    federated,
		"Local":        local,
		"Error":        errCode != "",
		"ErrorMessage": errorMessage(errCode),
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pageTemplates.ExecuteTemplate(c.Writer, "chooser", data); err != nil {
		logger.Error("chooser render failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// dispatch starts authentication against the chosen provider for the
// originating application. Local providers resolve in this call;
// federated ones return Pending and the browser leaves for the
// provider's domain.
func (h *Handler) dispatch(c *gin.Context) {
	appSlug := c.Param("app")
	providerName := c.Param("provider")

	if _, err := h.applications.Get(appSlug); err != nil {
		h.renderError(c, http.StatusNotFound,
			"Unknown application",
			"This application is not part of the sign-on deployment.",
			nil)
		return
	}

	p, err := h.providers.Get(providerName)
	if err != nil {
		h.renderError(c, http.StatusNotFound,
			"Provider unavailable",
			"The requested identity provider is not available.",
			nil)
		return
	}

	req := provider.Request{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	if providerName != "local" {
		req.State = h.generateState(c)
		_, req.CodeChallenge = h.generatePKCE(c)
		h.setLoginFlow(c, loginFlow{App: appSlug, Provider: providerName})
	}

	result, err := p.Authenticate(c.Request.Context(), req)
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.finish(c, appSlug, result)
}

// callback resumes a federated handshake. The originating application
// comes from the flow cookie set at dispatch, the CSRF state from the
// state cookie; both must check out before any code is exchanged.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	flow, ok := getLoginFlow(c)
	if !ok || flow.Provider != providerName {
		h.clearFlowCookies(c)
		h.redirectWithError(c, h.defaultApp, "login_expired")
		return
	}

	if !validateState(c) {
		h.clearFlowCookies(c)
		h.redirectWithError(c, flow.App, "invalid_state")
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("provider callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
		})
		h.clearFlowCookies(c)
		h.redirectWithError(c, flow.App, "provider_rejected")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.clearFlowCookies(c)
		h.redirectWithError(c, flow.App, "provider_rejected")
		return
	}

	p, err := h.providers.Get(providerName)
	if err != nil {
		h.renderError(c, http.StatusNotFound,
			"Provider unavailable",
			"The requested identity provider is not available.",
			nil)
		return
	}

	result, err := p.Authenticate(c.Request.Context(), provider.Request{
		Callback:     true,
		Code:         code,
		CodeVerifier: getPKCEVerifier(c),
	})
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.finish(c, flow.App, result)
}

// finish routes a provider result: identity → bind + cookie + redirect
// home, pending → external redirect, failure → back to the chooser with
// an error indicator.
func (h *Handler) finish(c *gin.Context, appSlug string, result provider.Result) {
	switch {
	case result.Identity != nil:
		h.completeLogin(c, appSlug, result.Identity)

	case result.Pending != nil:
		c.Redirect(http.StatusFound, result.Pending.RedirectURL)

	case result.Failure != nil:
		h.clearFlowCookies(c)
		h.redirectWithError(c, appSlug, result.Failure.Reason)

	default:
		h.serverError(c, errNoResult)
	}
}

// completeLogin commits the identity to the session store and sends the
// user back to the originating application. The session id travels only
// in the cookie; the redirect URL comes from the allow-list and never
// carries it.
func (h *Handler) completeLogin(c *gin.Context, appSlug string, identity *auth.Identity) {
	presented := session.FromRequest(c.Request)

	s, err := h.binder.Bind(c.Request.Context(), presented, identity)
	if err != nil {
		h.serverError(c, err)
		return
	}

	session.SetCookie(c.Writer, s.SessionID, s.ExpiresAt, h.sessionCookies)
	h.clearFlowCookies(c)

	target, err := h.redirects.PostLoginURL(appSlug)
	if err != nil {
		h.serverError(c, err)
		return
	}

	logger.Info("login complete", map[string]any{
		"app":      appSlug,
		"provider": identity.Provider,
		"subject":  identity.Subject,
	})

	c.Redirect(http.StatusFound, target)
}

// Logout destroys the session record, clears the shared cookie, and
// redirects to the login surface so every client application sees the
// logout on its next visit. It is idempotent: an absent or already
// destroyed session takes the same path.
func (h *Handler) Logout(c *gin.Context) {
	sessionID := session.FromRequest(c.Request)
	if sessionID != "" {
		if err := h.binder.Unbind(c.Request.Context(), sessionID); err != nil {
			logger.Warn("logout session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.ClearCookie(c.Writer, h.sessionCookies)

	target, err := h.redirects.LoginURL(h.defaultApp)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) redirectWithError(c *gin.Context, appSlug, code string) {
	target, err := h.redirects.LoginErrorURL(appSlug, code)
	if err != nil {
		// Unknown app slug in the flow cookie; fall back to this
		// surface's own chooser.
		target, err = h.redirects.LoginErrorURL(h.defaultApp, code)
		if err != nil {
			h.serverError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, target)
}
