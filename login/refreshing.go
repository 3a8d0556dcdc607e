package login

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// shouldRefreshAfterFactor mirrors the 0.9-of-lifetime refresh margin: a
// token is refreshed once it has lived through 90% of its stated
// lifetime, rather than waiting for it to actually expire.
const shouldRefreshAfterFactor = 0.9

// Token is the state of a single OAuth access token that needs to survive
// expiry via refresh.
type Token struct {
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	ExpiresAt    *time.Time // nil: no expiry known; refresh assumes a 24h lifetime
}

// TokenStorage loads and persists the currently valid token. The
// persistence mechanism itself (file, database, ...) is the caller's
// concern; only this interface is part of the library.
type TokenStorage interface {
	LoadToken(ctx context.Context) (Token, error)
	UpdateToken(ctx context.Context, token Token) error
}

// Refreshing is a Provider backed by a TokenStorage, refreshing the
// access token via Twitch's OAuth endpoint once it nears expiry. The login
// name is resolved once and then cached for the provider's lifetime; it is
// not looked up again after a refresh.
type Refreshing struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	storage      TokenStorage

	mu    sync.Mutex
	login string
}

// NewRefreshing builds a Refreshing provider. clientID/clientSecret are
// the Twitch application credentials used to call the OAuth refresh
// endpoint.
func NewRefreshing(clientID, clientSecret string, storage TokenStorage) *Refreshing {
	return &Refreshing{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		storage:      storage,
	}
}

func (r *Refreshing) GetCredentials(ctx context.Context) (Credentials, error) {
	token, err := r.storage.LoadToken(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("load token: %w", err)
	}

	if tokenNeedsRefresh(token) {
		token, err = r.refresh(ctx, token)
		if err != nil {
			return Credentials{}, fmt.Errorf("refresh token: %w", err)
		}
		if err := r.storage.UpdateToken(ctx, token); err != nil {
			return Credentials{}, fmt.Errorf("persist refreshed token: %w", err)
		}
	}

	login, err := r.resolveLogin(ctx, token)
	if err != nil {
		return Credentials{}, err
	}

	tok := token.AccessToken
	return Credentials{Login: login, Token: &tok}, nil
}

func tokenNeedsRefresh(t Token) bool {
	lifetime := 24 * time.Hour
	if t.ExpiresAt != nil {
		lifetime = t.ExpiresAt.Sub(t.CreatedAt)
	}
	age := time.Since(t.CreatedAt)
	maxAge := time.Duration(float64(lifetime) * shouldRefreshAfterFactor)
	return age >= maxAge
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    *int64 `json:"expires_in"`
}

func (r *Refreshing) refresh(ctx context.Context, current Token) (Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {current.RefreshToken},
		"client_id":     {r.clientID},
		"client_secret": {r.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://id.twitch.tv/oauth2/token?"+form.Encode(), nil)
	if err != nil {
		return Token{}, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()

	var decoded refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Token{}, err
	}

	now := time.Now()
	refreshed := Token{
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
		CreatedAt:    now,
	}
	if decoded.ExpiresIn != nil {
		expires := now.Add(time.Duration(*decoded.ExpiresIn) * time.Second)
		refreshed.ExpiresAt = &expires
	}
	return refreshed, nil
}

type helixUsersResponse struct {
	Data []struct {
		Login string `json:"login"`
	} `json:"data"`
}

func (r *Refreshing) resolveLogin(ctx context.Context, token Token) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.login != "" {
		return r.login, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.twitch.tv/helix/users", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Client-Id", r.clientID)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded helixUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Data) == 0 {
		return "", fmt.Errorf("login: helix /users returned no data for the bearer token")
	}

	r.login = decoded.Data[0].Login
	return r.login, nil
}
