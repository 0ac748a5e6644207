package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/models"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Google resolves Google OAuth authorization codes.
type Google struct {
	conf        *oauth2.Config
	userInfoURL string
}

func NewGoogle(cfg *config.Config) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Provider() models.AuthProvider { return models.ProviderGoogle }

func (g *Google) AuthURL() string {
	return g.conf.AuthCodeURL("")
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (g *Google) Resolve(ctx context.Context, code string) (*Identity, error) {
	// Route the code exchange through the bounded client; the oauth2
	// default has no timeout.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, ErrProviderAuth
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, ErrProfileFetch
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, ErrProfileFetch
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrProfileFetch
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, ErrProfileFetch
	}

	email := profile.Email
	if email == "" {
		email = placeholderEmail(models.ProviderGoogle, profile.ID)
	}
	name := profile.Name
	if name == "" {
		name = strings.Split(email, "@")[0]
	}

	return &Identity{
		Provider:   models.ProviderGoogle,
		ProviderID: profile.ID,
		Email:      email,
		Name:       name,
	}, nil
}
