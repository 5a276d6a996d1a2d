package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// AccountConfig is the shape of config_source.json / config_target.json
type AccountConfig struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Scopes       []string `json:"scope,omitempty"`
}

// Session is an authenticated handle on one Drive account
type Session struct {
	Key     string
	service *drive.Service
}

// ConfigPath returns the config file name for an account key
func ConfigPath(key string) string {
	return fmt.Sprintf("config_%s.json", key)
}

// Create logs in as the named account ("source" or "target") using its config
// file. When the config carries no refresh token yet, an interactive
// authorization-code flow runs on stdin/stdout and the obtained refresh token
// is written back to the config file and cached in the system keyring.
func Create(ctx context.Context, key string, logger logging.Logger) (*Session, error) {
	return create(ctx, key, os.Stdin, os.Stdout, logger)
}

func create(ctx context.Context, key string, in io.Reader, out io.Writer, logger logging.Logger) (*Session, error) {
	path := ConfigPath(key)
	cfg, err := loadAccountConfig(path)
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("Failed to load %s: %s", path, err)).
			WithContext("suggestedAction", "run 'gdmirror setup' first").
			Build())
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{utils.ScopeFull}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://localhost",
		Scopes:       scopes,
	}

	token, err := resolveToken(ctx, key, cfg, oauthCfg, in, out, logger)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service for %s: %w", key, err)
	}

	logger.Info("Logged in", logging.F("account", key))

	return &Session{Key: key, service: service}, nil
}

// resolveToken prefers the cached keyring token, then the refresh token in the
// config file, and finally the interactive flow.
func resolveToken(ctx context.Context, key string, cfg *AccountConfig, oauthCfg *oauth2.Config, in io.Reader, out io.Writer, logger logging.Logger) (*oauth2.Token, error) {
	store := NewTokenStore()

	if token, err := store.Load(key); err == nil && token.RefreshToken != "" {
		logger.Debug("Using cached token", logging.F("account", key), logging.F("backend", store.Name()))
		return token, nil
	}

	if cfg.RefreshToken != "" {
		return &oauth2.Token{RefreshToken: cfg.RefreshToken}, nil
	}

	token, err := authorizeInteractive(ctx, key, oauthCfg, in, out)
	if err != nil {
		return nil, err
	}

	if err := store.Save(key, token); err != nil {
		logger.Warn("Failed to cache token", logging.F("account", key), logging.F("error", err.Error()))
	}
	if token.RefreshToken != "" {
		cfg.RefreshToken = token.RefreshToken
		if err := saveAccountConfig(ConfigPath(key), cfg); err != nil {
			logger.Warn("Failed to persist refresh token", logging.F("account", key), logging.F("error", err.Error()))
		}
	}

	return token, nil
}

func authorizeInteractive(ctx context.Context, key string, oauthCfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	fmt.Fprintln(out, "======================")
	fmt.Fprintf(out, "   Log in as %s\n", key)
	fmt.Fprintln(out, "======================")
	fmt.Fprintln(out, "Open the following URL in your browser, authorize the app,")
	fmt.Fprintln(out, "then paste the authorization code below.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, oauthCfg.AuthCodeURL("state", oauth2.AccessTypeOffline))
	fmt.Fprint(out, "\nAuthorization code: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
			"No authorization code entered").Build())
	}
	code := scanner.Text()
	if code == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
			"Blank authorization code").Build())
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired,
			fmt.Sprintf("Token exchange failed: %s", err)).Build())
	}

	fmt.Fprintln(out, "======================")
	fmt.Fprintln(out, "       Complete       ")
	fmt.Fprintln(out, "======================")

	return token, nil
}

// Service returns the authenticated Drive service
func (s *Session) Service() *drive.Service {
	return s.service
}

// RootFolder returns the account's root folder handle. Drive accepts the
// "root" alias wherever a folder ID is expected.
func (s *Session) RootFolder() *types.DriveFile {
	return &types.DriveFile{
		ID:       "root",
		Name:     "",
		MimeType: utils.MimeTypeFolder,
	}
}

func loadAccountConfig(path string) (*AccountConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg AccountConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client_id and client_secret are required")
	}
	return &cfg, nil
}

// MarshalAccountConfig renders a config file body
func MarshalAccountConfig(cfg *AccountConfig) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func saveAccountConfig(path string, cfg *AccountConfig) error {
	data, err := MarshalAccountConfig(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
