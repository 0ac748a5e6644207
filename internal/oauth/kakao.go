package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/models"
)

const kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

// Kakao resolves Kakao OAuth authorization codes. Kakao frequently omits
// the account email (the user may not have granted it), so a placeholder
// address is synthesized from the numeric Kakao id.
type Kakao struct {
	conf        *oauth2.Config
	userInfoURL string
}

func NewKakao(cfg *config.Config) *Kakao {
	return &Kakao{
		conf: &oauth2.Config{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.KakaoRedirectURI,
			Endpoint:     kakao.Endpoint,
		},
		userInfoURL: kakaoUserInfoURL,
	}
}

func (k *Kakao) Provider() models.AuthProvider { return models.ProviderKakao }

func (k *Kakao) AuthURL() string {
	return k.conf.AuthCodeURL("")
}

type kakaoProfile struct {
	ID      int64 `json:"id"`
	Account struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (k *Kakao) Resolve(ctx context.Context, code string) (*Identity, error) {
	// Route the code exchange through the bounded client; the oauth2
	// default has no timeout.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	tok, err := k.conf.Exchange(ctx, code)
	if err != nil {
		return nil, ErrProviderAuth
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.userInfoURL, nil)
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

	var profile kakaoProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, ErrProfileFetch
	}

	providerID := fmt.Sprintf("%d", profile.ID)
	email := profile.Account.Email
	if email == "" {
		email = placeholderEmail(models.ProviderKakao, providerID)
	}
	name := profile.Account.Profile.Nickname
	if name == "" {
		name = "kakao_" + providerID
	}

	return &Identity{
		Provider:   models.ProviderKakao,
		ProviderID: providerID,
		Email:      email,
		Name:       name,
	}, nil
}
