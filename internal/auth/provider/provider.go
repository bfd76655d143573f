package provider

import (
	"context"
	"errors"

	"github.com/jsdevtools/client1/internal/auth"
)

// ErrFailed is the sentinel wrapped by adapters when the provider
// rejected the attempt (bad credentials, denied consent, failed token
// exchange). Callers surface it as a login-page error indicator, never
// a server error.
var ErrFailed = errors.New("authentication failed")

// Request carries the per-call inputs an adapter may need. Local
// adapters read the credential fields; federated adapters read the
// handshake fields. A federated handshake spans two requests: the
// dispatch call (Callback=false) returns Pending with the external
// redirect, and the provider's callback request (Callback=true)
// resolves it. All correlation state between the two calls lives in
// browser-held cookies, never in process memory.
type Request struct {
	// Local credentials (dispatch call).
	Email    string
	Password string

	// Federated dispatch call: CSRF state and PKCE challenge minted by
	// the caller, echoed back by the provider on callback.
	State         string
	CodeChallenge string

	// Federated callback call.
	Callback     bool
	Code         string
	CodeVerifier string
}

// Result is the outcome of one Authenticate call: exactly one field is
// set. Pending models the suspension point of a redirect-based
// handshake.
type Result struct {
	Identity *auth.Identity
	Pending  *Pending
	Failure  *Failure
}

// Pending asks the caller to redirect the browser to the provider's
// external login page. The flow resumes on an unrelated later callback
// request.
type Pending struct {
	RedirectURL string
}

// Failure reports a rejected attempt. Reason is a fixed code suitable
// for a login-page error indicator.
type Failure struct {
	Reason string
}

// Adapter is the contract every identity source implements. Local
// (password) and federated (redirect-handshake) providers are
// polymorphic over the same capability; implementations return identity
// facts only and never touch sessions or cookies.
type Adapter interface {
	// Name returns the provider identifier (e.g. "google", "local").
	Name() string

	// Authenticate resolves the request to an identity, a pending
	// external redirect, or a failure. The error return is reserved
	// for infrastructure problems; provider rejections come back as
	// Result.Failure.
	Authenticate(ctx context.Context, req Request) (Result, error)
}
