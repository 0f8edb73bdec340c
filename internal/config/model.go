package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/miportal/portal/internal/common"
)

// Config represents the application configuration structure
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	DevServer DevServerConfig `mapstructure:"devserver"`

	logger *logBuffer
}

// APIConfig points the client at the remote portal API.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls where the credential token is persisted.
type SessionConfig struct {
	Dir       string `mapstructure:"dir"`
	Ephemeral bool   `mapstructure:"ephemeral"` // keep the token in memory only
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"` // stderr, stdout or a file path
}

// DevServerConfig configures the local development API server.
type DevServerConfig struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	Database  string          `mapstructure:"database"`
	Secret    string          `mapstructure:"secret"`
	TokenTTL  time.Duration   `mapstructure:"token_ttl"`
	RedisURL  string          `mapstructure:"redis_url"`
	CacheTTL  time.Duration   `mapstructure:"cache_ttl"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Limits    LimitsConfig    `mapstructure:"limits"`
}

type RateLimitConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LimitsConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GetAPIURL returns the API base URL without a trailing slash.
func (c *Config) GetAPIURL() string {
	return strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
}

// SetAPIURL overrides the API base URL, typically from the --api-url flag.
func (c *Config) SetAPIURL(endpoint string) error {
	if !common.IsValidAPIEndpoint(endpoint) {
		return fmt.Errorf("invalid api url %q: expected an absolute http(s) url", endpoint)
	}
	c.API.URL = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return nil
}

func (c *Config) HasAPIURL() bool {
	return len(c.GetAPIURL()) > 0
}

// GetAPIHostname is used to key the persisted token per API host.
func (c *Config) GetAPIHostname() string {
	return common.HostnameOf(c.GetAPIURL())
}

func (c *Config) GetAPITimeout() time.Duration {
	if c.API.Timeout <= 0 {
		return DefaultAPITimeout
	}
	return c.API.Timeout
}

// GetSessionDir returns the token directory with a leading ~ expanded.
func (c *Config) GetSessionDir() string {
	return expandHome(c.Session.Dir)
}

func (c *Config) GetDevServerAddress() string {
	return fmt.Sprintf("%s:%d", c.DevServer.Host, c.DevServer.Port)
}

func (c *Config) GetDevServerDatabase() string {
	return expandHome(c.DevServer.Database)
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if !c.HasAPIURL() {
		return ErrNoAPIEndpoint
	}
	if !common.IsValidAPIEndpoint(c.GetAPIURL()) {
		return fmt.Errorf("invalid api url %q: expected an absolute http(s) url", c.API.URL)
	}
	if c.DevServer.Port < 0 || c.DevServer.Port > 65535 {
		return fmt.Errorf("invalid devserver port %d", c.DevServer.Port)
	}
	return nil
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
