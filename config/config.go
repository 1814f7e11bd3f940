package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds the configuration for the Atelier server.
type Config struct {
	// Listen is the address the Atelier server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the log level used when no --log-level flag is given.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SessionKey is the key used to authenticate session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the directory where the sqlite database file is stored.
	Path string `yaml:"path" mapstructure:"path"`
}

// Load reads the configuration from the given file, or from the default
// search locations if path is empty. Environment variables with the
// ATELIER_ prefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("ATELIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.atelier")
		v.AddConfigPath("/etc/atelier")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with ATELIER_ prefix will override config file values")
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3800")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_max_age", 86400) // 24 hours
	v.SetDefault("database.path", "./data")
}

func validateConfig(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive")
	}
	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.SessionKey == "" {
		// Sessions signed with a generated key die with the process.
		c.SessionKey = uuid.NewString()
		log.Warn("no session_key configured, generated a random one; sessions will not survive a restart")
	}
	return nil
}
