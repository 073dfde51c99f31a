package tiktok

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// OAuthServer is the local HTTP server that receives the authorization
// redirect during the interactive login flow. It captures the code and
// state parameters and hands them to the waiting login command.
type OAuthServer struct {
	server       *http.Server
	port         int
	callbackPath string
	resultChan   chan *OAuthResult
	errorChan    chan error
	mu           sync.Mutex
	running      bool
}

// OAuthResult contains the parameters captured from the OAuth callback.
type OAuthResult struct {
	Code  string
	State string
	Error string
}

// NewOAuthServer creates a callback server listening on the given port.
// callbackPath is the path component of the registered redirect URI.
func NewOAuthServer(port int, callbackPath string) *OAuthServer {
	if callbackPath == "" {
		callbackPath = "/callback"
	}
	return &OAuthServer{
		port:         port,
		callbackPath: callbackPath,
		resultChan:   make(chan *OAuthResult, 1),
		errorChan:    make(chan error, 1),
	}
}

// Start begins listening for the OAuth callback.
func (s *OAuthServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}
	if !s.isPortAvailable() {
		return fmt.Errorf("port %d is already in use", s.port)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.callbackPath, s.handleCallback)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.running = true

	// Capture the server while still holding the lock. Stop may nil out
	// s.server before the goroutine gets scheduled.
	srv := s.server
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errorChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the callback server down.
func (s *OAuthServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.running = false
	s.server = nil
	return err
}

// WaitForCallback blocks until the callback arrives, the server fails,
// or the timeout elapses.
func (s *OAuthServer) WaitForCallback(timeout time.Duration) (*OAuthResult, error) {
	select {
	case result := <-s.resultChan:
		return result, nil
	case err := <-s.errorChan:
		return nil, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for OAuth callback")
	}
}

func (s *OAuthServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	errorParam := query.Get("error")

	if errorParam != "" {
		log.Errorf("OAuth error received: %s", errorParam)
		s.sendResult(&OAuthResult{Error: errorParam})
		http.Error(w, fmt.Sprintf("OAuth error: %s", errorParam), http.StatusBadRequest)
		return
	}
	if code == "" {
		s.sendResult(&OAuthResult{Error: "no_code"})
		http.Error(w, "No authorization code received", http.StatusBadRequest)
		return
	}
	if state == "" {
		s.sendResult(&OAuthResult{Error: "no_state"})
		http.Error(w, "No state parameter received", http.StatusBadRequest)
		return
	}

	s.sendResult(&OAuthResult{Code: code, State: state})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(loginSuccessHTML))
}

func (s *OAuthServer) sendResult(result *OAuthResult) {
	select {
	case s.resultChan <- result:
	default:
		log.Warn("OAuth result channel is full, result dropped")
	}
}

func (s *OAuthServer) isPortAvailable() bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return false
	}
	defer func() { _ = listener.Close() }()
	return true
}

const loginSuccessHTML = `<!DOCTYPE html>
<html>
<head><title>TikTok account linked</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h1>Account linked</h1>
<p>Authentication completed. You can close this window and return to the terminal.</p>
</body>
</html>`
