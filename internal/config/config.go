// Package config provides configuration management for the ClipFleet
// integration clients. It handles loading and parsing YAML configuration
// files, and provides structured access to application settings including
// the auth directory, proxy configuration, and the GeeLark and TikTok
// platform credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultGeeLarkBaseURL is the canonical GeeLark open API endpoint.
const DefaultGeeLarkBaseURL = "https://openapi.geelark.com"

// DefaultTikTokScopes is the scope set requested when the configuration
// does not name its own. Upload/publish scopes are defined by the platform
// but are not requested by default.
var DefaultTikTokScopes = []string{
	"user.info.basic",
	"user.info.profile",
	"user.info.stats",
	"video.list",
}

// Config represents the application's configuration, loaded from a YAML file.
// It is read once at startup and treated as immutable for the process lifetime.
type Config struct {
	// AuthDir is the directory where TikTok token files are stored.
	AuthDir string `yaml:"auth-dir"`

	// ProxyURL is the URL of an optional proxy server to use for outbound requests.
	ProxyURL string `yaml:"proxy-url"`

	// RequestLog enables or disables detailed request logging functionality.
	RequestLog bool `yaml:"request-log"`

	// LoggingToFile writes logs to rotated files in the logs directory
	// instead of stdout when enabled.
	LoggingToFile bool `yaml:"logging-to-file"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`

	// GeeLark holds the cloud-phone automation platform credentials.
	GeeLark GeeLarkConfig `yaml:"geelark"`

	// TikTok holds the TikTok Open API application credentials.
	TikTok TikTokConfig `yaml:"tiktok"`
}

// GeeLarkConfig holds the credentials and endpoint for the GeeLark open API.
// The API key signs every outbound request and must never be logged.
type GeeLarkConfig struct {
	// AppID is the GeeLark application identifier sent with every request.
	AppID string `yaml:"app-id"`

	// APIKey is the signing secret for the request envelope.
	APIKey string `yaml:"api-key"`

	// BaseURL overrides the API endpoint; defaults to DefaultGeeLarkBaseURL.
	BaseURL string `yaml:"base-url"`
}

// TikTokConfig holds the TikTok Open API application credentials used for
// the PKCE OAuth flow and bearer-token API calls.
type TikTokConfig struct {
	// ClientKey is the application's client key (TikTok's client id).
	ClientKey string `yaml:"client-key"`

	// ClientSecret is the application's client secret.
	ClientSecret string `yaml:"client-secret"`

	// RedirectURI is the registered OAuth redirect URI.
	RedirectURI string `yaml:"redirect-uri"`

	// Scopes is the list of scopes requested during authorization.
	// Defaults to DefaultTikTokScopes when empty.
	Scopes []string `yaml:"scopes"`
}

// LoadConfig reads a YAML configuration file from the given path, applies
// environment-variable fallbacks for credentials, and fills in defaults.
func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvFallbacks()
	cfg.applyDefaults()

	if cfg.AuthDir != "" {
		expanded, errExpand := expandHome(cfg.AuthDir)
		if errExpand != nil {
			return nil, errExpand
		}
		cfg.AuthDir = expanded
	}

	return &cfg, nil
}

// applyEnvFallbacks fills credential fields from the environment when the
// YAML file leaves them empty, so secrets can stay out of checked-in config.
func (c *Config) applyEnvFallbacks() {
	fallback(&c.GeeLark.AppID, "GEELARK_APP_ID")
	fallback(&c.GeeLark.APIKey, "GEELARK_API_KEY")
	fallback(&c.GeeLark.BaseURL, "GEELARK_BASE_URL")
	fallback(&c.TikTok.ClientKey, "TIKTOK_CLIENT_KEY")
	fallback(&c.TikTok.ClientSecret, "TIKTOK_CLIENT_SECRET")
	fallback(&c.TikTok.RedirectURI, "TIKTOK_REDIRECT_URI")
}

func (c *Config) applyDefaults() {
	if c.GeeLark.BaseURL == "" {
		c.GeeLark.BaseURL = DefaultGeeLarkBaseURL
	}
	if len(c.TikTok.Scopes) == 0 {
		c.TikTok.Scopes = append([]string(nil), DefaultTikTokScopes...)
	}
	if c.AuthDir == "" {
		c.AuthDir = "~/.clipfleet"
	}
}

func fallback(dst *string, envKey string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = strings.TrimSpace(os.Getenv(envKey))
	}
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")), nil
	}
	return path, nil
}
