package local

import (
	"context"
	"errors"

	"github.com/jsdevtools/client1/internal/auth"
	"github.com/jsdevtools/client1/internal/auth/credentials"
	"github.com/jsdevtools/client1/internal/auth/provider"
)

const providerName = "local"

// Provider authenticates email/password pairs against the credential
// store. It resolves in a single call; there is no Pending state.
type Provider struct {
	credentials *credentials.Service
}

func New(service *credentials.Service) *Provider {
	return &Provider{credentials: service}
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Authenticate(
	ctx context.Context,
	req provider.Request,
) (provider.Result, error) {

	if req.Email == "" || req.Password == "" {
		return provider.Result{
			Failure: &provider.Failure{Reason: "invalid_credentials"},
		}, nil
	}

	account, err := p.credentials.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, credentials.ErrInvalidCredentials) {
		return provider.Result{
			Failure: &provider.Failure{Reason: "invalid_credentials"},
		}, nil
	}
	if err != nil {
		return provider.Result{}, err
	}

	return provider.Result{
		Identity: &auth.Identity{
			Provider: providerName,
			Subject:  account.UserID,
			Email:    account.Email,
			Name:     account.DisplayName,
		},
	}, nil
}
