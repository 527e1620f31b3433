package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Verify      VerifyConfig      `toml:"verify"`
	Timeouts    TimeoutConfig     `toml:"timeouts"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify   SpotifyConfig   `toml:"spotify"`
	Generator GeneratorConfig `toml:"generator"`
}

// SpotifyConfig contains Spotify API credentials and persisted OAuth tokens.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

// Map converts the credentials to the map form the service constructor expects.
func (s SpotifyConfig) Map() map[string]string {
	credentials := map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
	}
	if s.RedirectURI != "" {
		credentials["redirect_uri"] = s.RedirectURI
	}
	if s.AccessToken != "" {
		credentials["access_token"] = s.AccessToken
	}
	return credentials
}

// Update stores the OAuth token fields for persistence.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("token has no access token")
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.Expiry = token.Expiry
	return nil
}

// Token reconstructs the persisted [oauth2.Token], or nil when none is stored.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
		TokenType:    "Bearer",
	}
}

// GeneratorConfig contains credentials for the chat-completions generator.
type GeneratorConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// VerifyConfig bounds the verification fan-out against the catalog.
type VerifyConfig struct {
	MaxBatch  int     `toml:"max_batch"`
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// TimeoutConfig holds per-call timeouts for the external collaborators.
type TimeoutConfig struct {
	GeneratorSeconds int `toml:"generator_seconds"`
	CatalogSeconds   int `toml:"catalog_seconds"`
	ProviderSeconds  int `toml:"provider_seconds"`
}

// GeneratorTimeout returns the generator call timeout as a [time.Duration].
func (t TimeoutConfig) GeneratorTimeout() time.Duration {
	return secondsOrDefault(t.GeneratorSeconds, 60*time.Second)
}

// CatalogTimeout returns the per-lookup catalog timeout as a [time.Duration].
func (t TimeoutConfig) CatalogTimeout() time.Duration {
	return secondsOrDefault(t.CatalogSeconds, 10*time.Second)
}

// ProviderTimeout returns the publish call timeout as a [time.Duration].
func (t TimeoutConfig) ProviderTimeout() time.Duration {
	return secondsOrDefault(t.ProviderSeconds, 30*time.Second)
}

func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes the configuration back to the specified path as TOML.
func SaveConfig(path string, config *Config) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
