package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"

	"github.com/jsdevtools/client1/internal/auth"
	"github.com/jsdevtools/client1/internal/auth/provider"
	"github.com/jsdevtools/client1/internal/logger"
)

const (
	providerName = "github"

	userEndpoint = "https://api.github.com/user"
)

// Provider is the Github adapter. Github speaks plain OAuth2 (no OIDC
// id_token), so the callback call exchanges the code and then fetches
// the user resource with the granted token.
type Provider struct {
	oauthConfig *oauth2.Config

	// userURL is overridable for tests.
	userURL string
}

func New(
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githubendpoint.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		userURL: userEndpoint,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Authenticate(
	ctx context.Context,
	req provider.Request,
) (provider.Result, error) {

	if !req.Callback {
		return provider.Result{
			Pending: &provider.Pending{
				RedirectURL: p.oauthConfig.AuthCodeURL(req.State),
			},
		}, nil
	}

	identity, err := p.exchangeCode(ctx, req.Code)
	if err != nil {
		logger.Warn("github authentication failed", map[string]any{
			"error": err.Error(),
		})
		return provider.Result{
			Failure: &provider.Failure{Reason: "provider_rejected"},
		}, nil
	}

	return provider.Result{Identity: identity}, nil
}

func (p *Provider) exchangeCode(
	ctx context.Context,
	code string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.oauthConfig.Client(ctx, token)

	resp, err := client.Get(p.userURL)
	if err != nil {
		return nil, fmt.Errorf("github user fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user fetch returned %d", resp.StatusCode)
	}

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("github user parse failed: %w", err)
	}

	if user.ID == 0 {
		return nil, errors.New("github user missing id")
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &auth.Identity{
		Provider: providerName,
		Subject:  strconv.FormatInt(user.ID, 10),
		Email:    user.Email,
		Name:     name,
	}, nil
}
