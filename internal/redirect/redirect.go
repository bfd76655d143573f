// Package redirect computes the cross-domain redirect targets between
// client applications and the shared login surface. Every target is
// resolved through the application allow-list; no URL is ever built
// from request input, and no redirect URL ever carries a session id.
package redirect

import (
	"net/url"

	"github.com/jsdevtools/client1/internal/apps"
)

type Coordinator struct {
	apps      *apps.Registry
	loginBase string // external base URL of the login surface
}

func NewCoordinator(registry *apps.Registry, loginBase string) *Coordinator {
	return &Coordinator{
		apps:      registry,
		loginBase: loginBase,
	}
}

// LoginURL is where an unauthenticated request on the given application
// is sent: the shared login surface's provider chooser, with the
// originating application encoded as a path component so the surface
// knows where to send the user back.
func (c *Coordinator) LoginURL(appSlug string) (string, error) {
	if _, err := c.apps.Get(appSlug); err != nil {
		return "", err
	}
	return c.loginBase + "/login/" + url.PathEscape(appSlug), nil
}

// LoginErrorURL is LoginURL with a user-visible error indicator, used
// when a provider rejects the attempt. The indicator is a fixed code,
// never free-form text from the provider.
func (c *Coordinator) LoginErrorURL(appSlug, code string) (string, error) {
	base, err := c.LoginURL(appSlug)
	if err != nil {
		return "", err
	}
	return base + "?error=" + url.QueryEscape(code), nil
}

// PostLoginURL is where the user lands after the session binder commits
// an identity: the originating application's base URL from the
// allow-list. The shared cookie set during login is already visible on
// the target domain, so nothing rides in the URL.
func (c *Coordinator) PostLoginURL(appSlug string) (string, error) {
	app, err := c.apps.Get(appSlug)
	if err != nil {
		return "", err
	}
	return app.BaseURL, nil
}
