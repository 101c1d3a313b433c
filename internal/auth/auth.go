// Package auth keeps the OAuth token used for Data API listings.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/cesargomez89/tubedrums/internal/constants"
	"github.com/cesargomez89/tubedrums/internal/logger"
)

const defaultRedirectURL = "http://localhost"

var ErrNotAuthenticated = errors.New("no stored YouTube token, run the auth command first")

type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenFile    string
	// Endpoint defaults to Google's OAuth endpoint.
	Endpoint oauth2.Endpoint
}

// TokenStore persists the OAuth token on disk and hands out token sources
// that write refreshed tokens back.
type TokenStore struct {
	config *oauth2.Config
	file   string
	logger *logger.Logger
	mu     sync.Mutex
}

func NewTokenStore(opts Options, log *logger.Logger) *TokenStore {
	if opts.Endpoint.TokenURL == "" {
		opts.Endpoint = google.Endpoint
	}
	if opts.RedirectURL == "" {
		opts.RedirectURL = defaultRedirectURL
	}
	if opts.TokenFile == "" {
		opts.TokenFile = constants.DefaultTokenFile
	}
	if log == nil {
		log = logger.Default()
	}
	return &TokenStore{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Scopes:       []string{constants.YouTubeReadonlyScope},
			Endpoint:     opts.Endpoint,
		},
		file:   opts.TokenFile,
		logger: log.WithComponent("auth"),
	}
}

// AuthCodeURL returns the consent URL. Offline access is requested so a
// refresh token comes back.
func (s *TokenStore) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it.
func (s *TokenStore) Exchange(ctx context.Context, code string) error {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to exchange auth code for token: %w", err)
	}
	return s.save(token)
}

func (s *TokenStore) IsAuthenticated() bool {
	_, err := s.load()
	return err == nil
}

// Credential returns a token source for the stored token, or nil when none
// is stored.
func (s *TokenStore) Credential(ctx context.Context) oauth2.TokenSource {
	token, err := s.load()
	if err != nil {
		return nil
	}
	base := s.config.TokenSource(ctx, token)
	return oauth2.ReuseTokenSource(token, &persistingSource{base: base, store: s, last: token.AccessToken})
}

func (s *TokenStore) load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := tokenFromFile(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}
	return token, nil
}

func (s *TokenStore) save(token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveToken(s.file, token)
}

type persistingSource struct {
	base  oauth2.TokenSource
	store *TokenStore
	mu    sync.Mutex
	last  string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.store.save(token); err != nil {
			p.store.logger.Warn("Failed to save refreshed token", "error", err)
		} else {
			p.store.logger.Debug("Refreshed token saved")
		}
	}
	return token, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

func saveToken(file string, token *oauth2.Token) error {
	dir := filepath.Dir(file)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, constants.TokenPermissions)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to encode token: %w", err)
	}
	return nil
}
