// Package oauth implements the social login flows. Each provider exchanges
// an authorization code for a provider access token, fetches the profile and
// normalizes it into an Identity the auth service can reconcile.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/models"
)

var (
	ErrProviderAuth    = errors.New("authentication with provider failed")
	ErrProfileFetch    = errors.New("could not retrieve provider profile")
	ErrUnknownProvider = errors.New("unsupported social provider")
)

// Identity is the provider-agnostic result of a resolved callback.
type Identity struct {
	Provider   models.AuthProvider
	ProviderID string
	Email      string
	Name       string
}

// Resolver is implemented once per supported provider.
type Resolver interface {
	Provider() models.AuthProvider
	// AuthURL builds the authorization redirect target. No network call.
	AuthURL() string
	// Resolve exchanges the authorization code and fetches the profile.
	Resolve(ctx context.Context, code string) (*Identity, error)
}

// Registry selects a resolver by its provider tag.
type Registry map[models.AuthProvider]Resolver

func NewRegistry(cfg *config.Config) Registry {
	return Registry{
		models.ProviderGoogle: NewGoogle(cfg),
		models.ProviderKakao:  NewKakao(cfg),
	}
}

// Lookup resolves an external provider path segment.
func (r Registry) Lookup(name string) (Resolver, error) {
	res, ok := r[models.AuthProvider(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return res, nil
}

// httpClient bounds profile fetches so a hung provider cannot hang the
// serving request indefinitely.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// placeholderEmail synthesizes a deterministic provider-local address for
// accounts whose provider did not share an email. Such addresses can never
// collide with a real signup on that provider's domain.
func placeholderEmail(provider models.AuthProvider, providerID string) string {
	return fmt.Sprintf("%s_%s@%s.local", provider, providerID, provider)
}
