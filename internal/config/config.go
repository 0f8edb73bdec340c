package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

var ErrNoAPIEndpoint = errors.New(
	"no portal api configured. Set api.url in config.yaml or MIPORTAL_API_URL")

const (
	DefaultAPIURL     = "http://localhost:8000/api/v1"
	DefaultAPITimeout = 15 * time.Second
	DefaultConfigDir  = "~/.config/miportal"
)

func DefaultConfig() *Config {

	v := viper.New()

	// Set default values
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("error unmarshaling default config: %v", err)
	}

	return &config
}

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	setupViperConfig(v, configFile)

	bindEnvironmentVariables(v)

	config, err := readAndUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	if err := setupLogging(config, v); err != nil {
		return nil, err
	}

	return config, nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil {
		// .env file not found, that's okay - continue with other sources
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}
	return nil
}

// setupViperConfig configures viper with file paths and defaults
func setupViperConfig(v *viper.Viper, configFile string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "miportal"))
	}

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	setDefaults(v)

	v.SetEnvPrefix("MIPORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
}

// bindEnvironmentVariables binds all environment variables to viper
func bindEnvironmentVariables(v *viper.Viper) {

	v.BindEnv("api.url", "MIPORTAL_API_URL", "MIPORTAL_BASE_URL")
	v.BindEnv("api.timeout", "MIPORTAL_API_TIMEOUT")

	v.BindEnv("session.dir", "MIPORTAL_SESSION_DIR")
	v.BindEnv("session.ephemeral", "MIPORTAL_SESSION_EPHEMERAL")

	v.BindEnv("logging.level", "MIPORTAL_LOGGING_LEVEL")
	v.BindEnv("logging.format", "MIPORTAL_LOGGING_FORMAT")
	v.BindEnv("logging.output", "MIPORTAL_LOGGING_OUTPUT")

	bindDevServerEnvVars(v)
}

// bindDevServerEnvVars binds the development API server settings
func bindDevServerEnvVars(v *viper.Viper) {
	v.BindEnv("devserver.host", "MIPORTAL_DEVSERVER_HOST")
	v.BindEnv("devserver.port", "MIPORTAL_DEVSERVER_PORT")
	v.BindEnv("devserver.database", "MIPORTAL_DEVSERVER_DATABASE", "DATABASE_URL")
	v.BindEnv("devserver.secret", "MIPORTAL_DEVSERVER_SECRET", "SECRET_KEY")
	v.BindEnv("devserver.token_ttl", "MIPORTAL_DEVSERVER_TOKEN_TTL")
	v.BindEnv("devserver.redis_url", "MIPORTAL_DEVSERVER_REDIS_URL", "REDIS_URL")
	v.BindEnv("devserver.cache_ttl", "MIPORTAL_DEVSERVER_CACHE_TTL")
}

func setDefaults(v *viper.Viper) {

	// Client defaults
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", DefaultAPITimeout.String())

	v.SetDefault("session.dir", DefaultConfigDir)
	v.SetDefault("session.ephemeral", false)

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	// Development server defaults
	v.SetDefault("devserver.host", "127.0.0.1")
	v.SetDefault("devserver.port", 8000)
	v.SetDefault("devserver.database", DefaultConfigDir+"/devserver.db")
	v.SetDefault("devserver.secret", "changeme")
	v.SetDefault("devserver.token_ttl", "30m")
	v.SetDefault("devserver.redis_url", "")
	v.SetDefault("devserver.cache_ttl", "5m")
	v.SetDefault("devserver.rate_limit.rate", 1.0)
	v.SetDefault("devserver.rate_limit.burst", 5)
	v.SetDefault("devserver.cors.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("devserver.limits.read_timeout", "30s")
	v.SetDefault("devserver.limits.write_timeout", "30s")
	v.SetDefault("devserver.limits.idle_timeout", "120s")
}

// readAndUnmarshalConfig reads the configuration file and unmarshals it
func readAndUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setupLogging configures the logging system based on the config
func setupLogging(config *Config, v *viper.Viper) error {
	logrusLevel, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(logrusLevel)
	config.logger = newLogBuffer(defaultLogBufferSize)
	logrus.AddHook(config.logger)

	output, err := openLogOutput(config.Logging.Output)
	if err != nil {
		return err
	}
	logrus.SetOutput(output)

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	// Dump out the config settings if in debug mode
	if logrusLevel >= logrus.DebugLevel {
		for key, value := range v.AllSettings() {
			if key == "devserver" {
				continue // holds the signing secret
			}
			logrus.Debugf("Config '%s': %v", key, value)
		}
	}

	return nil
}

func openLogOutput(output string) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard", "none":
		return io.Discard, nil
	}

	path := expandHome(output)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// RecentLogs returns the most recent warnings and errors logged since Load.
func (c *Config) RecentLogs(count int) []*LogEntry {
	if c.logger == nil {
		return nil
	}
	return c.logger.GetRecentEvents(count)
}
