package handler

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// The federated handshake suspends at the process boundary: the server
// redirects to the provider and resumes on an unrelated callback
// request. All correlation between the two requests rides in these
// short-lived HttpOnly cookies; nothing is held in process memory, so
// an abandoned handshake needs no timer — the cookies and the session
// simply expire.
const (
	stateCookieName = "__oauth_state"
	pkceCookieName  = "__oauth_pkce"
	flowCookieName  = "__login_flow"

	flowTTL = 5 * time.Minute
)

func (h *Handler) setFlowCookie(c *gin.Context, name, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flowTTL.Seconds()),
	})
}

func (h *Handler) clearFlowCookie(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (h *Handler) clearFlowCookies(c *gin.Context) {
	h.clearFlowCookie(c, stateCookieName)
	h.clearFlowCookie(c, pkceCookieName)
	h.clearFlowCookie(c, flowCookieName)
}

func (h *Handler) generateState(c *gin.Context) string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)

	state := base64.RawURLEncoding.EncodeToString(b)
	h.setFlowCookie(c, stateCookieName, state)
	return state
}

func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return cookie.Value == stateQuery
}

func (h *Handler) generatePKCE(c *gin.Context) (verifier string, challenge string) {
	b := make([]byte, 32)
	_, _ = rand.Read(b)

	verifier = base64.RawURLEncoding.EncodeToString(b)

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	h.setFlowCookie(c, pkceCookieName, verifier)
	return verifier, challenge
}

func getPKCEVerifier(c *gin.Context) string {
	cookie, err := c.Request.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// loginFlow records which application and provider a federated
// handshake was started for, so the callback can compute the post-login
// redirect without trusting request input.
type loginFlow struct {
	App      string
	Provider string
}

func (h *Handler) setLoginFlow(c *gin.Context, flow loginFlow) {
	h.setFlowCookie(c, flowCookieName, flow.App+"/"+flow.Provider)
}

func getLoginFlow(c *gin.Context) (loginFlow, bool) {
	cookie, err := c.Request.Cookie(flowCookieName)
	if err != nil || cookie.Value == "" {
		return loginFlow{}, false
	}

	app, providerName, ok := strings.Cut(cookie.Value, "/")
	if !ok || app == "" || providerName == "" {
		return loginFlow{}, false
	}

	return loginFlow{App: app, Provider: providerName}, true
}
