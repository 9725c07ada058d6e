package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultBaseURL      = "http://localhost:8000"
	defaultLoginDelayMS = 1000
	defaultIMAPPort     = "993"
	defaultDrafts       = "Drafts"
	envPrefix           = "TRANSCRIPTS"
)

// APIConfig holds settings for the remote transcript service.
type APIConfig struct {
	// BaseURL is the root URL of the service (e.g., http://localhost:8000).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single request. Zero leaves the transport default.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// StorageConfig controls where local UI state is persisted.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig holds settings for the login screen.
type AuthConfig struct {
	LoginDelayMS int `mapstructure:"login_delay_ms" yaml:"login_delay_ms"`
}

// LoginDelay returns the simulated login latency.
func (c AuthConfig) LoginDelay() time.Duration {
	return time.Duration(c.LoginDelayMS) * time.Millisecond
}

// MailboxConfig holds the optional IMAP account used to store drafts.
// The password lives in the system keyring, never in this file.
type MailboxConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Drafts   string `mapstructure:"drafts" yaml:"drafts"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Mailbox MailboxConfig `mapstructure:"mailbox" yaml:"mailbox"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/transcript-insights/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "transcript-insights", "config.yaml")
}

// DefaultStoragePath returns the default location of the state database.
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "state.db")
	}
	return filepath.Join(home, ".local", "share", "transcript-insights", "state.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL: defaultBaseURL,
		},
		Storage: StorageConfig{
			Path: DefaultStoragePath(),
		},
		Auth: AuthConfig{
			LoginDelayMS: defaultLoginDelayMS,
		},
		Mailbox: MailboxConfig{
			Port:   defaultIMAPPort,
			TLS:    true,
			Drafts: defaultDrafts,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// setDefaults registers every known key so that environment overrides
// resolve even when the key is absent from the file.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("auth.login_delay_ms", d.Auth.LoginDelayMS)
	v.SetDefault("mailbox.enabled", d.Mailbox.Enabled)
	v.SetDefault("mailbox.host", d.Mailbox.Host)
	v.SetDefault("mailbox.port", d.Mailbox.Port)
	v.SetDefault("mailbox.username", d.Mailbox.Username)
	v.SetDefault("mailbox.tls", d.Mailbox.TLS)
	v.SetDefault("mailbox.drafts", d.Mailbox.Drafts)
	v.SetDefault("display.theme", d.Display.Theme)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TRANSCRIPTS_ override file values
// (TRANSCRIPTS_API_BASE_URL overrides api.base_url). A missing file yields
// the defaults plus any environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if _, ok := err.(*os.PathError); !ok && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultBaseURL
	}
	if cfg.API.TimeoutSec < 0 {
		cfg.API.TimeoutSec = 0
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath()
	}
	if cfg.Mailbox.Drafts == "" {
		cfg.Mailbox.Drafts = defaultDrafts
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("storage", cfg.Storage)
	v.Set("auth", cfg.Auth)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
