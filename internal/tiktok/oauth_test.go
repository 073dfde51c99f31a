package tiktok

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clipfleet/clipfleet/internal/config"
)

func testAuth(t *testing.T, handler http.Handler) *TikTokAuth {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		TikTok: config.TikTokConfig{
			ClientKey:    "ck-1",
			ClientSecret: "cs-1",
			RedirectURI:  "https://example.com/callback",
			Scopes:       []string{"user.info.basic", "video.list"},
		},
	}
	a := NewTikTokAuth(cfg)
	a.authorizeEndpoint = server.URL + "/auth/authorize/"
	a.tokenEndpoint = server.URL + "/oauth/token/"
	a.revokeEndpoint = server.URL + "/oauth/revoke/"
	a.apiBaseURL = server.URL
	return a
}

func TestGenerateAuthURL(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.NotFoundHandler())
	pkce, err := GeneratePKCECodes()
	if err != nil {
		t.Fatalf("GeneratePKCECodes: %v", err)
	}

	authURL, err := a.GenerateAuthURL("state-1", pkce)
	if err != nil {
		t.Fatalf("GenerateAuthURL: %v", err)
	}

	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth URL: %v", err)
	}
	query := parsed.Query()

	if query.Get("client_key") != "ck-1" {
		t.Errorf("client_key = %q", query.Get("client_key"))
	}
	if query.Get("response_type") != "code" {
		t.Errorf("response_type = %q", query.Get("response_type"))
	}
	if query.Get("scope") != "user.info.basic,video.list" {
		t.Errorf("scope should be comma-joined, got %q", query.Get("scope"))
	}
	if query.Get("state") != "state-1" {
		t.Errorf("state = %q", query.Get("state"))
	}
	if query.Get("code_challenge") != pkce.CodeChallenge {
		t.Errorf("code_challenge = %q", query.Get("code_challenge"))
	}
	if query.Get("code_challenge_method") != "S256" {
		t.Errorf("code_challenge_method = %q", query.Get("code_challenge_method"))
	}
	// The verifier must never appear in the authorize URL.
	if strings.Contains(authURL, pkce.CodeVerifier) {
		t.Error("code verifier leaked into authorize URL")
	}
}

func TestGenerateAuthURLValidation(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.NotFoundHandler())
	if _, err := a.GenerateAuthURL("state", nil); err == nil {
		t.Error("expected error without PKCE codes")
	}
	pkce, _ := GeneratePKCECodes()
	if _, err := a.GenerateAuthURL("", pkce); err == nil {
		t.Error("expected error without state")
	}
}

const tokenResponseBody = `{
	"access_token": "act.new",
	"expires_in": 86400,
	"open_id": "user-open-id",
	"refresh_expires_in": 31536000,
	"refresh_token": "rft.new",
	"scope": "user.info.basic,video.list",
	"token_type": "Bearer"
}`

func TestExchangeCodeForTokens(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		_, _ = w.Write([]byte(tokenResponseBody))
	}))

	pkce, _ := GeneratePKCECodes()
	before := time.Now()
	token, err := a.ExchangeCodeForTokens(context.Background(), "auth-code-1", pkce)
	if err != nil {
		t.Fatalf("ExchangeCodeForTokens: %v", err)
	}

	if gotForm.Get("grant_type") != "authorization_code" {
		t.Errorf("grant_type = %q", gotForm.Get("grant_type"))
	}
	if gotForm.Get("code") != "auth-code-1" {
		t.Errorf("code = %q", gotForm.Get("code"))
	}
	if gotForm.Get("code_verifier") != pkce.CodeVerifier {
		t.Errorf("code_verifier = %q", gotForm.Get("code_verifier"))
	}
	if gotForm.Get("redirect_uri") != "https://example.com/callback" {
		t.Errorf("redirect_uri = %q", gotForm.Get("redirect_uri"))
	}

	if token.AccessToken != "act.new" || token.RefreshToken != "rft.new" || token.OpenID != "user-open-id" {
		t.Errorf("unexpected token record: %+v", token)
	}

	// expires_in=86400 must become an absolute instant near now+24h.
	expire, err := time.Parse(time.RFC3339, token.Expire)
	if err != nil {
		t.Fatalf("parse expire: %v", err)
	}
	want := before.Add(86400 * time.Second)
	if diff := expire.Sub(want); diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("expire = %v, want about %v", expire, want)
	}
}

func TestTokenEndpointError(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Authorization code expired.","log_id":"L1"}`))
	}))

	pkce, _ := GeneratePKCECodes()
	_, err := a.ExchangeCodeForTokens(context.Background(), "stale-code", pkce)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != "invalid_grant" || !strings.Contains(apiErr.Message, "expired") {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestRefreshTokensFullReplacement(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = w.Write([]byte(tokenResponseBody))
	}))

	token, err := a.RefreshTokens(context.Background(), "rft.old")
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if gotForm.Get("grant_type") != "refresh_token" || gotForm.Get("refresh_token") != "rft.old" {
		t.Errorf("unexpected form: %v", gotForm)
	}
	// The new record fully replaces the old one, including the rotated
	// refresh token.
	if token.RefreshToken != "rft.new" {
		t.Errorf("refresh token not replaced: %q", token.RefreshToken)
	}
}

func TestGetValidTokenStateMachine(t *testing.T) {
	t.Parallel()

	t.Run("valid token returned unchanged", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int64
		a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))

		stored := tokenExpiringIn(time.Hour)
		got, err := a.GetValidToken(context.Background(), stored)
		if err != nil {
			t.Fatalf("GetValidToken: %v", err)
		}
		if got != stored {
			t.Error("valid token should be returned unchanged")
		}
		if calls.Load() != 0 {
			t.Errorf("no network call expected, got %d", calls.Load())
		}
	})

	t.Run("expired access with valid refresh", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int64
		a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(tokenResponseBody))
		}))

		stored := tokenExpiringIn(-time.Minute)
		got, err := a.GetValidToken(context.Background(), stored)
		if err != nil {
			t.Fatalf("GetValidToken: %v", err)
		}
		if got == nil || got.AccessToken != "act.new" {
			t.Errorf("expected refreshed token, got %+v", got)
		}
		if calls.Load() != 1 {
			t.Errorf("expected exactly one refresh call, got %d", calls.Load())
		}
	})

	t.Run("refresh token also expired", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int64
		a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))

		stored := tokenExpiringIn(-time.Minute)
		stored.RefreshExpire = time.Now().Add(-time.Minute).Format(time.RFC3339)

		got, err := a.GetValidToken(context.Background(), stored)
		if err != nil {
			t.Fatalf("re-authentication required is not an error, got %v", err)
		}
		if got != nil {
			t.Errorf("expected nil sentinel, got %+v", got)
		}
		if calls.Load() != 0 {
			t.Errorf("no refresh attempt expected, got %d", calls.Load())
		}
	})

	t.Run("nil stored token", func(t *testing.T) {
		t.Parallel()
		a := testAuth(t, http.NotFoundHandler())
		got, err := a.GetValidToken(context.Background(), nil)
		if err != nil || got != nil {
			t.Errorf("nil stored token should yield nil sentinel, got %v, %v", got, err)
		}
	})
}

func TestRevokeToken(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{}`))
	}))

	if err := a.RevokeToken(context.Background(), "act.gone"); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if gotForm.Get("token") != "act.gone" || gotForm.Get("client_key") != "ck-1" {
		t.Errorf("unexpected revoke form: %v", gotForm)
	}
}

func TestRevokeTokenFailureReported(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_request"}`))
	}))

	if err := a.RevokeToken(context.Background(), "act.gone"); err == nil {
		t.Fatal("revoke failure must be reported, not swallowed")
	}
}
