package core

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edvin/keyhub/internal/config"
	"github.com/edvin/keyhub/internal/model"
)

// OIDCService drives the OAuth login flow: Unauthenticated (no state issued),
// Authenticating (signed state parameter outstanding), Authenticated (state
// verified, code exchanged, user record ensured, session issued).
type OIDCService struct {
	users     *UserService
	auth      *AuthService
	providers []config.OIDCProvider
	jwtSecret []byte
}

func NewOIDCService(users *UserService, auth *AuthService, providers []config.OIDCProvider, jwtSecret []byte) *OIDCService {
	return &OIDCService{
		users:     users,
		auth:      auth,
		providers: providers,
		jwtSecret: jwtSecret,
	}
}

// ProviderInfo is a public-facing provider summary.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Providers returns the list of enabled OAuth providers.
func (s *OIDCService) Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(s.providers))
	for i, p := range s.providers {
		out[i] = ProviderInfo{ID: p.ID, Name: p.Name}
	}
	return out
}

// GetProvider looks up a configured provider by ID.
func (s *OIDCService) GetProvider(id string) *config.OIDCProvider {
	for i := range s.providers {
		if s.providers[i].ID == id {
			return &s.providers[i]
		}
	}
	return nil
}

// oidcState is the JSON payload embedded in the OAuth state parameter.
type oidcState struct {
	Provider string `json:"provider"`
	Nonce    string `json:"nonce"`
	Exp      int64  `json:"exp"`
}

// AuthorizeURL builds the OAuth authorization URL with a signed state
// parameter, moving the flow into the Authenticating state.
func (s *OIDCService) AuthorizeURL(provider *config.OIDCProvider, callbackURL string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	state := oidcState{
		Provider: provider.ID,
		Nonce:    hex.EncodeToString(nonce),
		Exp:      time.Now().Add(10 * time.Minute).Unix(),
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}

	params := url.Values{
		"client_id":     {provider.ClientID},
		"redirect_uri":  {callbackURL},
		"response_type": {"code"},
		"scope":         {strings.Join(provider.Scopes, " ")},
		"state":         {s.signState(stateJSON)},
	}

	return provider.AuthURL + "?" + params.Encode(), nil
}

// LoginResult holds the outcome of a completed OAuth callback.
type LoginResult struct {
	Token string
	User  *model.User
}

// HandleCallback validates the state, exchanges the code for a token, fetches
// userinfo, and completes the transition into Authenticated: the user record
// is ensured (idempotently) and a session token issued.
func (s *OIDCService) HandleCallback(ctx context.Context, code, rawState, callbackURL string) (*LoginResult, error) {
	state, err := s.verifyState(rawState)
	if err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}

	provider := s.GetProvider(state.Provider)
	if provider == nil {
		return nil, fmt.Errorf("unknown provider: %s", state.Provider)
	}

	tokenResp, err := s.exchangeCode(ctx, provider, code, callbackURL)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, provider, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}

	var name, picture *string
	if info.Name != "" {
		name = &info.Name
	}
	if info.Picture != "" {
		picture = &info.Picture
	}

	user, err := s.users.EnsureUser(ctx, provider.ID, info.Sub, info.Email, name, picture)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// signState HMAC-signs the state JSON and returns a base64url-encoded
// "payload.signature" string.
func (s *OIDCService) signState(stateJSON []byte) string {
	payload := base64.RawURLEncoding.EncodeToString(stateJSON)
	mac := hmac.New(sha256.New, s.jwtSecret)
	mac.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return payload + "." + sig
}

// verifyState verifies the HMAC signature and decodes the state.
func (s *OIDCService) verifyState(raw string) (*oidcState, error) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid state format")
	}

	payload := parts[0]
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, s.jwtSecret)
	mac.Write([]byte(payload))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return nil, fmt.Errorf("invalid signature")
	}

	stateJSON, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var state oidcState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	if time.Now().Unix() > state.Exp {
		return nil, fmt.Errorf("state expired")
	}

	return &state, nil
}

// tokenResponse holds the OAuth token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *OIDCService) exchangeCode(ctx context.Context, provider *config.OIDCProvider, code, callbackURL string) (*tokenResponse, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {callbackURL},
		"client_id":     {provider.ClientID},
		"client_secret": {provider.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("empty access token")
	}

	return &tok, nil
}

// userInfo holds the subset of OIDC userinfo claims the dashboard needs.
type userInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *OIDCService) fetchUserInfo(ctx context.Context, provider *config.OIDCProvider, accessToken string) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read userinfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if info.Sub == "" {
		return nil, fmt.Errorf("missing sub claim")
	}

	return &info, nil
}
