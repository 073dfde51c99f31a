package tiktok

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clipfleet/clipfleet/internal/misc"
)

// expiryLead is the early-refresh margin: a token is treated as expired
// while requests started near the deadline could still be in flight.
const expiryLead = 5 * time.Minute

// TikTokTokenStorage stores the OAuth2 token state for one linked TikTok
// account. Refresh replaces the whole record; fields are never merged.
type TikTokTokenStorage struct {
	// AccessToken is the bearer token used for authenticating API requests.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens when the current one expires.
	RefreshToken string `json:"refresh_token"`
	// OpenID is the platform identifier of the linked account.
	OpenID string `json:"open_id"`
	// Scope lists the scopes granted by the user, comma-joined.
	Scope string `json:"scope"`
	// TokenType is the token type, typically "Bearer".
	TokenType string `json:"token_type"`
	// LastRefresh is the timestamp of the last exchange or refresh.
	LastRefresh string `json:"last_refresh"`
	// Type indicates the authentication provider type, always "tiktok".
	Type string `json:"type"`
	// Expire is the absolute instant when the access token expires.
	Expire string `json:"expired"`
	// RefreshExpire is the absolute instant when the refresh token expires.
	// Once past, re-authentication is mandatory.
	RefreshExpire string `json:"refresh_expired"`
}

// SaveTokenToFile serializes the token storage to a JSON file, creating
// the directory structure as needed.
func (ts *TikTokTokenStorage) SaveTokenToFile(authFilePath string) error {
	misc.LogSavingCredentials(authFilePath)
	ts.Type = "tiktok"
	if err := os.MkdirAll(filepath.Dir(authFilePath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}

	f, err := os.Create(authFilePath)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(ts); err != nil {
		return fmt.Errorf("failed to write token to file: %w", err)
	}
	return nil
}

// LoadTokenFromFile reads a previously saved token record.
func LoadTokenFromFile(authFilePath string) (*TikTokTokenStorage, error) {
	data, err := os.ReadFile(authFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var ts TikTokTokenStorage
	if err = json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &ts, nil
}

// IsExpired reports whether the access token is within the early-refresh
// margin of its expiry. An unparseable expiry counts as expired.
func (ts *TikTokTokenStorage) IsExpired() bool {
	return instantReached(ts.Expire, expiryLead)
}

// IsRefreshExpired reports whether the refresh token itself has expired,
// at which point only interactive re-authentication can recover.
func (ts *TikTokTokenStorage) IsRefreshExpired() bool {
	return instantReached(ts.RefreshExpire, 0)
}

func instantReached(instant string, lead time.Duration) bool {
	if instant == "" {
		return true
	}
	t, err := time.Parse(time.RFC3339, instant)
	if err != nil {
		return true
	}
	return !t.After(time.Now().Add(lead))
}
