package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/models"
)

// fakeProvider stands in for an OAuth provider's token and userinfo
// endpoints.
type fakeProvider struct {
	srv            *httptest.Server
	tokenStatus    int
	userInfoStatus int
	userInfoBody   string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	f := &fakeProvider{
		tokenStatus:    http.StatusOK,
		userInfoStatus: http.StatusOK,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-access-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.userInfoStatus != http.StatusOK {
			w.WriteHeader(f.userInfoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.userInfoBody))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeProvider) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  f.srv.URL + "/auth",
		TokenURL: f.srv.URL + "/token",
	}
}

func newTestGoogle(f *fakeProvider) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     "google-client-id",
			ClientSecret: "google-client-secret",
			RedirectURL:  "http://localhost/callback",
			Scopes:       []string{"email", "profile"},
			Endpoint:     f.endpoint(),
		},
		userInfoURL: f.srv.URL + "/userinfo",
	}
}

func TestGoogle_AuthURL(t *testing.T) {
	t.Parallel()

	g := NewGoogle(&config.Config{
		GoogleClientID:    "cid",
		GoogleRedirectURI: "http://localhost:8080/cb",
	})

	url := g.AuthURL()
	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=cid")
	assert.Contains(t, url, "response_type=code")
	assert.Contains(t, url, "scope=email+profile")
	assert.NotContains(t, url, "state=")
}

type recordingTransport struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

// Not parallel: swaps the package-level client.
func TestGoogle_ResolveUsesBoundedClient(t *testing.T) {
	f := newFakeProvider(t)
	f.userInfoBody = `{"id":"g-1","email":"u@gmail.com","name":"U"}`
	g := newTestGoogle(f)

	rec := &recordingTransport{}
	orig := httpClient
	httpClient = &http.Client{Transport: rec, Timeout: orig.Timeout}
	defer func() { httpClient = orig }()

	_, err := g.Resolve(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Contains(t, rec.paths, "/token")
	assert.Contains(t, rec.paths, "/userinfo")
}

func TestGoogle_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("normalizes the profile", func(t *testing.T) {
		t.Parallel()

		f := newFakeProvider(t)
		f.userInfoBody = `{"id":"g-123","email":"user@gmail.com","name":"Test User"}`
		g := newTestGoogle(f)

		ident, err := g.Resolve(context.Background(), "auth-code")
		require.NoError(t, err)

		assert.Equal(t, models.ProviderGoogle, ident.Provider)
		assert.Equal(t, "g-123", ident.ProviderID)
		assert.Equal(t, "user@gmail.com", ident.Email)
		assert.Equal(t, "Test User", ident.Name)
	})

	t.Run("falls back to email local part for missing name", func(t *testing.T) {
		t.Parallel()

		f := newFakeProvider(t)
		f.userInfoBody = `{"id":"g-123","email":"someone@gmail.com"}`
		g := newTestGoogle(f)

		ident, err := g.Resolve(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "someone", ident.Name)
	})

	t.Run("token exchange failure", func(t *testing.T) {
		t.Parallel()

		f := newFakeProvider(t)
		f.tokenStatus = http.StatusBadRequest
		g := newTestGoogle(f)

		_, err := g.Resolve(context.Background(), "bad-code")
		assert.ErrorIs(t, err, ErrProviderAuth)
	})

	t.Run("profile fetch failure", func(t *testing.T) {
		t.Parallel()

		f := newFakeProvider(t)
		f.userInfoStatus = http.StatusInternalServerError
		g := newTestGoogle(f)

		_, err := g.Resolve(context.Background(), "auth-code")
		assert.ErrorIs(t, err, ErrProfileFetch)
	})
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(&config.Config{})

	google, err := registry.Lookup("google")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, google.Provider())

	kakao, err := registry.Lookup("kakao")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderKakao, kakao.Provider())

	_, err = registry.Lookup("github")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
