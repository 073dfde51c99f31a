// Package cmd implements the operator-facing commands: the interactive
// TikTok account-link flow and device-farm inspection helpers.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/clipfleet/clipfleet/internal/browser"
	"github.com/clipfleet/clipfleet/internal/config"
	"github.com/clipfleet/clipfleet/internal/misc"
	"github.com/clipfleet/clipfleet/internal/tiktok"
	log "github.com/sirupsen/logrus"
)

// defaultCallbackPort is used when the redirect URI does not name a port.
const defaultCallbackPort = 8976

// callbackTimeout bounds how long the login command waits for the user
// to finish the browser flow.
const callbackTimeout = 5 * time.Minute

// LoginOptions contains options for the login process.
type LoginOptions struct {
	// NoBrowser indicates whether to skip opening the browser automatically.
	NoBrowser bool

	// CallbackPort overrides the local OAuth callback port when set (>0).
	CallbackPort int

	// Prompt allows the caller to provide interactive input when needed.
	Prompt func(prompt string) (string, error)
}

// DoTikTokLogin drives the PKCE OAuth flow end to end: it opens the
// authorization page, receives the redirect on a local callback server
// (or accepts a pasted callback URL), exchanges the code, and saves the
// resulting token file into the auth directory.
func DoTikTokLogin(cfg *config.Config, options *LoginOptions) {
	if options == nil {
		options = &LoginOptions{}
	}

	ctx := context.Background()
	auth := tiktok.NewTikTokAuth(cfg)

	state, err := misc.GenerateRandomState()
	if err != nil {
		log.Errorf("failed to generate state: %v", err)
		return
	}
	pkce, err := tiktok.GeneratePKCECodes()
	if err != nil {
		log.Errorf("failed to generate PKCE codes: %v", err)
		return
	}
	authURL, err := auth.GenerateAuthURL(state, pkce)
	if err != nil {
		log.Errorf("failed to build authorization URL: %v", err)
		return
	}

	var code string
	if options.NoBrowser {
		code, err = promptForCallback(authURL, state, options.Prompt)
	} else {
		code, err = runCallbackServer(cfg, authURL, state, options.CallbackPort)
	}
	if err != nil {
		log.Errorf("TikTok authentication failed: %v", err)
		return
	}

	token, err := auth.ExchangeCodeForTokens(ctx, code, pkce)
	if err != nil {
		log.Errorf("token exchange failed: %v", err)
		return
	}

	authFilePath := filepath.Join(cfg.AuthDir, fmt.Sprintf("tiktok-%s.json", token.OpenID))
	if err = token.SaveTokenToFile(authFilePath); err != nil {
		log.Errorf("failed to save token: %v", err)
		return
	}

	if info, errInfo := auth.GetUserInfo(ctx, token.AccessToken); errInfo == nil {
		fmt.Printf("Linked TikTok account: %s (%s)\n", info.DisplayName, info.OpenID)
	}
	fmt.Println("TikTok authentication successful!")
}

// runCallbackServer starts the local redirect listener, opens the browser,
// and waits for the callback. It verifies the anti-forgery state before
// returning the authorization code.
func runCallbackServer(cfg *config.Config, authURL, state string, portOverride int) (string, error) {
	port, path, err := callbackAddress(cfg.TikTok.RedirectURI, portOverride)
	if err != nil {
		return "", err
	}

	server := tiktok.NewOAuthServer(port, path)
	if err = server.Start(); err != nil {
		return "", err
	}
	defer func() { _ = server.Stop(context.Background()) }()

	fmt.Printf("Opening browser for TikTok authorization...\n%s\n", authURL)
	if errOpen := browser.OpenURL(authURL); errOpen != nil {
		log.Warnf("failed to open browser, visit the URL above manually: %v", errOpen)
	}

	result, err := server.WaitForCallback(callbackTimeout)
	if err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("authorization denied: %s", result.Error)
	}
	if result.State != state {
		return "", fmt.Errorf("state mismatch, possible CSRF attempt")
	}
	return result.Code, nil
}

// promptForCallback prints the authorization URL and asks the user to
// paste the redirect URL after completing the flow elsewhere.
func promptForCallback(authURL, state string, prompt func(string) (string, error)) (string, error) {
	if prompt == nil {
		return "", fmt.Errorf("no-browser mode requires an interactive prompt")
	}

	fmt.Printf("Visit the following URL to authorize:\n%s\n", authURL)
	input, err := prompt("Paste the full callback URL here: ")
	if err != nil {
		return "", err
	}

	callback, err := misc.ParseOAuthCallback(input)
	if err != nil {
		return "", err
	}
	if callback == nil {
		return "", fmt.Errorf("empty callback input")
	}
	if callback.Error != "" {
		return "", fmt.Errorf("authorization denied: %s", callback.Error)
	}
	if callback.State != "" && callback.State != state {
		return "", fmt.Errorf("state mismatch, possible CSRF attempt")
	}
	return callback.Code, nil
}

// callbackAddress derives the local listener port and path from the
// registered redirect URI, with an optional explicit port override.
func callbackAddress(redirectURI string, portOverride int) (int, string, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return 0, "", fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}

	port := defaultCallbackPort
	if portOverride > 0 {
		port = portOverride
	} else if parsed.Port() != "" {
		if port, err = strconv.Atoi(parsed.Port()); err != nil {
			return 0, "", fmt.Errorf("invalid redirect URI port %q", parsed.Port())
		}
	}

	path := parsed.Path
	if path == "" {
		path = "/callback"
	}
	return port, path, nil
}
