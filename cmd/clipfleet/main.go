// Package main provides the ClipFleet operator CLI. It links TikTok
// creator accounts through the OAuth PKCE flow and inspects the GeeLark
// cloud-phone farm that executes publish and warmup tasks.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/clipfleet/clipfleet/internal/buildinfo"
	"github.com/clipfleet/clipfleet/internal/cmd"
	"github.com/clipfleet/clipfleet/internal/config"
	"github.com/clipfleet/clipfleet/internal/logging"
	"github.com/clipfleet/clipfleet/internal/util"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = "config.yaml"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	fmt.Printf("ClipFleet Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	var tiktokLogin bool
	var noBrowser bool
	var oauthCallbackPort int
	var listPhones bool
	var taskIDs string
	var configPath string

	flag.BoolVar(&tiktokLogin, "tiktok-login", false, "Link a TikTok account using OAuth")
	flag.BoolVar(&noBrowser, "no-browser", false, "Don't open browser automatically for OAuth")
	flag.IntVar(&oauthCallbackPort, "oauth-callback-port", 0, "Override OAuth callback port (defaults to the redirect URI port)")
	flag.BoolVar(&listPhones, "phones", false, "List cloud phones")
	flag.StringVar(&taskIDs, "task-status", "", "Query task status for a comma-separated list of task ids")
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")
	flag.Parse()

	// Load .env first so credential fallbacks are visible to the config.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env file: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err = logging.ConfigureLogOutput(cfg); err != nil {
		log.Fatalf("failed to configure logging: %v", err)
	}
	if cfg.Debug {
		log.Debugf("geelark app %s key %s", cfg.GeeLark.AppID, util.HideAPIKey(cfg.GeeLark.APIKey))
	}

	switch {
	case tiktokLogin:
		cmd.DoTikTokLogin(cfg, &cmd.LoginOptions{
			NoBrowser:    noBrowser,
			CallbackPort: oauthCallbackPort,
			Prompt:       stdinPrompt,
		})
	case listPhones:
		cmd.DoListPhones(cfg)
	case taskIDs != "":
		cmd.DoQueryTasks(cfg, taskIDs)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// stdinPrompt reads one line of interactive input from the terminal.
func stdinPrompt(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
