package calsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"tidu/pkg/logging"
)

const (
	// credentialsFile is the downloaded Google API credentials.json, placed
	// in the application config directory.
	credentialsFile = "credentials.json"

	// tokenFile caches the obtained OAuth token next to the credentials.
	tokenFile = "token.json"

	// localhostAuthPort is where the local server listens for the OAuth
	// redirect. Must match the redirect URI registered for the client.
	localhostAuthPort = "6789"
)

// GetOAuthConfig builds an oauth2.Config from the credentials file in
// configDir, forcing the redirect to our local callback port.
func GetOAuthConfig(configDir string, scopes []string) (*oauth2.Config, error) {
	b, err := os.ReadFile(filepath.Join(configDir, credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	parsed, parseErr := url.Parse(config.RedirectURL)
	switch {
	case config.RedirectURL == "urn:ietf:wg:oauth:2.0:oob":
		config.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", localhostAuthPort)
	case parseErr == nil && (parsed.Hostname() == "localhost" || parsed.Hostname() == "127.0.0.1"):
		if parsed.Port() != localhostAuthPort {
			parsed.Host = fmt.Sprintf("%s:%s", parsed.Hostname(), localhostAuthPort)
			config.RedirectURL = parsed.String()
		}
	}
	return config, nil
}

// GetClient returns an authenticated HTTP client, loading the cached token
// or running the browser authorization flow when there is none.
func GetClient(ctx context.Context, configDir string, scopes []string) (*http.Client, error) {
	config, err := GetOAuthConfig(configDir, scopes)
	if err != nil {
		return nil, err
	}

	tokenPath := filepath.Join(configDir, tokenFile)
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		logging.Info("calsync", "no cached token at %s, starting authorization flow", tokenPath)
		tok, err = getTokenFromWeb(config)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(tokenPath, tok); err != nil {
			logging.Info("calsync", "could not cache token: %v", err)
		}
	}

	// config.Client refreshes transparently; re-save when the token changed
	// so the cache keeps the freshest refresh token.
	source := config.TokenSource(ctx, tok)
	current, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("token source failed: %w", err)
	}
	if current.AccessToken != tok.AccessToken || current.RefreshToken != tok.RefreshToken {
		if err := saveToken(tokenPath, current); err != nil {
			logging.Info("calsync", "could not cache refreshed token: %v", err)
		}
	}

	return oauth2.NewClient(ctx, source), nil
}

// getTokenFromWeb runs the authorization-code flow through a throwaway local
// HTTP server that captures the redirect.
func getTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string)
	errCh := make(chan error)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", localhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", localhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize access:\n%s\n", authURL)

	select {
	case authCode := <-codeCh:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(ctx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token: %w", err)
		}
		server.Shutdown(ctx)
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-time.After(5 * time.Minute):
		server.Shutdown(context.Background())
		return nil, fmt.Errorf("authorization timed out, please try again")
	}
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
