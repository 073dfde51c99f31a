// Package tiktok provides authentication and API access for the TikTok
// Open API. It drives the OAuth2 PKCE (Proof Key for Code Exchange)
// authorization-code flow, manages token storage and refresh, and exposes
// the bearer-token user and video endpoints.
package tiktok

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCECodes is a verifier/challenge pair for one authorization attempt.
// The verifier must be retained by the caller between the authorize
// redirect and the token exchange, and is never sent to the authorize
// endpoint.
type PKCECodes struct {
	CodeVerifier  string
	CodeChallenge string
}

// GeneratePKCECodes generates a new PKCE pair as specified in RFC 7636:
// a cryptographically random code verifier and its SHA-256 code challenge.
func GeneratePKCECodes() (*PKCECodes, error) {
	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	return &PKCECodes{
		CodeVerifier:  codeVerifier,
		CodeChallenge: generateCodeChallenge(codeVerifier),
	}, nil
}

// generateCodeVerifier creates a high-entropy random string used to prove
// possession of the client that initiated the authorization request.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	// URL-safe base64 without padding.
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// generateCodeChallenge derives the S256 challenge: the SHA-256 hash of
// the verifier, base64url-encoded without padding.
func generateCodeChallenge(codeVerifier string) string {
	hash := sha256.Sum256([]byte(codeVerifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
