package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clipfleet/clipfleet/internal/config"
	"github.com/clipfleet/clipfleet/internal/util"
	log "github.com/sirupsen/logrus"
)

// TikTok OAuth and Open API endpoints.
const (
	AuthorizeEndpoint = "https://www.tiktok.com/v2/auth/authorize/"
	TokenEndpoint     = "https://open.tiktokapis.com/v2/oauth/token/"
	RevokeEndpoint    = "https://open.tiktokapis.com/v2/oauth/revoke/"
	APIBaseURL        = "https://open.tiktokapis.com/v2"
)

// TikTokAuth handles the TikTok OAuth2 PKCE flow and the bearer-token API
// calls. It holds only immutable credentials and an HTTP client, so a
// single instance is safe for concurrent use.
type TikTokAuth struct {
	clientKey    string
	clientSecret string
	redirectURI  string
	scopes       []string
	httpClient   *http.Client

	// Endpoint fields default to the production URLs; tests point them
	// at local servers.
	authorizeEndpoint string
	tokenEndpoint     string
	revokeEndpoint    string
	apiBaseURL        string
}

// NewTikTokAuth creates a new TikTokAuth service instance with a
// proxy-configured HTTP client.
func NewTikTokAuth(cfg *config.Config) *TikTokAuth {
	return &TikTokAuth{
		clientKey:         cfg.TikTok.ClientKey,
		clientSecret:      cfg.TikTok.ClientSecret,
		redirectURI:       cfg.TikTok.RedirectURI,
		scopes:            cfg.TikTok.Scopes,
		httpClient:        util.SetProxy(cfg, &http.Client{Timeout: 30 * time.Second}),
		authorizeEndpoint: AuthorizeEndpoint,
		tokenEndpoint:     TokenEndpoint,
		revokeEndpoint:    RevokeEndpoint,
		apiBaseURL:        APIBaseURL,
	}
}

// GenerateAuthURL creates the OAuth authorization URL with PKCE. The
// verifier half of the pair stays with the caller until the token
// exchange; only the challenge is sent here.
func (a *TikTokAuth) GenerateAuthURL(state string, pkceCodes *PKCECodes) (string, error) {
	if pkceCodes == nil {
		return "", fmt.Errorf("PKCE codes are required")
	}
	if state == "" {
		return "", fmt.Errorf("state is required")
	}

	params := url.Values{
		"client_key":            {a.clientKey},
		"response_type":         {"code"},
		"redirect_uri":          {a.redirectURI},
		"scope":                 {strings.Join(a.scopes, ",")},
		"state":                 {state},
		"code_challenge":        {pkceCodes.CodeChallenge},
		"code_challenge_method": {"S256"},
	}
	return fmt.Sprintf("%s?%s", a.authorizeEndpoint, params.Encode()), nil
}

// tokenResponse is the wire shape of the token and refresh endpoints.
// Relative TTLs are converted to absolute instants at parse time.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	OpenID           string `json:"open_id"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	LogID            string `json:"log_id"`
}

// ExchangeCodeForTokens exchanges an authorization code for access and
// refresh tokens using the verifier generated for this attempt.
func (a *TikTokAuth) ExchangeCodeForTokens(ctx context.Context, code string, pkceCodes *PKCECodes) (*TikTokTokenStorage, error) {
	if pkceCodes == nil {
		return nil, fmt.Errorf("PKCE codes are required for token exchange")
	}

	form := url.Values{
		"client_key":    {a.clientKey},
		"client_secret": {a.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {a.redirectURI},
		"code_verifier": {pkceCodes.CodeVerifier},
	}
	return a.doTokenRequest(ctx, form)
}

// RefreshTokens exchanges a refresh token for a new access token. The
// result is a full replacement record; old token fields are not merged.
func (a *TikTokAuth) RefreshTokens(ctx context.Context, refreshToken string) (*TikTokTokenStorage, error) {
	form := url.Values{
		"client_key":    {a.clientKey},
		"client_secret": {a.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return a.doTokenRequest(ctx, form)
}

func (a *TikTokAuth) doTokenRequest(ctx context.Context, form url.Values) (*TikTokTokenStorage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("tiktok token: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok token: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tiktok token: read response failed: %w", err)
	}

	var tokenResp tokenResponse
	if errDecode := json.Unmarshal(body, &tokenResp); errDecode != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("tiktok token: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, fmt.Errorf("tiktok token: decode response failed: %w", errDecode)
	}
	if tokenResp.Error != "" {
		return nil, &APIError{Code: tokenResp.Error, Message: tokenResp.ErrorDescription, LogID: tokenResp.LogID}
	}
	if resp.StatusCode != http.StatusOK || tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("tiktok token: %d missing access token in response", resp.StatusCode)
	}

	// Compute absolute expiry instants now; relative TTLs are never stored.
	now := time.Now()
	return &TikTokTokenStorage{
		AccessToken:   tokenResp.AccessToken,
		RefreshToken:  tokenResp.RefreshToken,
		OpenID:        tokenResp.OpenID,
		Scope:         tokenResp.Scope,
		TokenType:     tokenResp.TokenType,
		LastRefresh:   now.Format(time.RFC3339),
		Type:          "tiktok",
		Expire:        now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second).Format(time.RFC3339),
		RefreshExpire: now.Add(time.Duration(tokenResp.RefreshExpiresIn) * time.Second).Format(time.RFC3339),
	}, nil
}

// RevokeToken invalidates an access token on the platform side. Failure
// is reported to the caller: the remote side may still consider the token
// live.
func (a *TikTokAuth) RevokeToken(ctx context.Context, accessToken string) error {
	form := url.Values{
		"client_key":    {a.clientKey},
		"client_secret": {a.clientSecret},
		"token":         {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.revokeEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("tiktok revoke: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tiktok revoke: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tiktok revoke: read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tiktok revoke: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// GetValidToken returns a usable token for the stored record. A token
// outside the early-refresh margin is returned unchanged; an expired
// access token is refreshed once when the refresh token is still valid.
// When the refresh token has also expired it returns (nil, nil): the
// caller must send the user back through the interactive flow. That is
// an expected steady state, not an error.
func (a *TikTokAuth) GetValidToken(ctx context.Context, stored *TikTokTokenStorage) (*TikTokTokenStorage, error) {
	if stored == nil {
		return nil, nil
	}
	if !stored.IsExpired() {
		return stored, nil
	}
	if stored.IsRefreshExpired() {
		log.WithField("open_id", stored.OpenID).Debug("refresh token expired, re-authentication required")
		return nil, nil
	}

	refreshed, err := a.RefreshTokens(ctx, stored.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("tiktok: token refresh failed: %w", err)
	}
	log.WithField("open_id", refreshed.OpenID).Debug("access token refreshed")
	return refreshed, nil
}
