// Package core turns a configuration file into a running bot.
//
// It handles:
//
//   - Configuration loading and validation (YAML or TOML)
//   - Bot token lookup from the config or the OS keychain
//   - The Engine, which registers canned command replies, welcome messages
//     and echo on top of the bot SDK and runs the poll loop
//
// # Example Configuration
//
//	api:
//	  token: "${ICQ_BOT_TOKEN}"
//	polling:
//	  poll_time: "30s"
//	security:
//	  whitelist_enabled: true
//	  allowed_users: ["alice@corp.example"]
//	commands:
//	  - prefix: "/ping"
//	    reply: "pong"
//	welcome: "Welcome, {name}!"
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/keepmind9/icqbot/internal/keychain"
	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/keepmind9/icqbot/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKeychainAccount = "default"
	DefaultLogEnableStdout = true
	HelpCommand            = "/help"
	WhoamiCommand          = "/whoami"
)

// LoadConfig loads configuration from file and expands environment variables.
// Files ending in .toml are parsed as TOML, everything else as YAML.
func LoadConfig(configPath string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		if _, err := toml.Decode(expandedData, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return ""
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// validateConfig fills defaults and rejects invalid values
func validateConfig(config *Config) error {
	if config.API.BaseURL == "" {
		config.API.BaseURL = constants.DefaultAPIURL
	}
	if config.API.ParseMode == "" {
		config.API.ParseMode = constants.DefaultParseMode
	}
	if config.API.KeychainAccount == "" {
		config.API.KeychainAccount = DefaultKeychainAccount
	}

	// Set default logging configuration
	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = constants.DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = constants.DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = constants.DefaultLogMaxAge
	}
	if config.Logging.EnableStdout == nil {
		enable := DefaultLogEnableStdout
		config.Logging.EnableStdout = &enable
	}

	// Validate polling configuration
	if config.Polling.PollTime == "" {
		config.Polling.PollTime = constants.DefaultPollTime.String()
	}
	if config.Polling.RetryDelay == "" {
		config.Polling.RetryDelay = constants.DefaultRetryDelay.String()
	}

	pollTime, err := time.ParseDuration(config.Polling.PollTime)
	if err != nil {
		return fmt.Errorf("invalid polling.poll_time: %w", err)
	}
	if pollTime < constants.MinPollTime {
		return fmt.Errorf("polling.poll_time must be at least %v (got %v)", constants.MinPollTime, pollTime)
	}
	if pollTime > constants.MaxPollTime {
		return fmt.Errorf("polling.poll_time is too large (max %v, got %v)", constants.MaxPollTime, pollTime)
	}

	retryDelay, err := time.ParseDuration(config.Polling.RetryDelay)
	if err != nil {
		return fmt.Errorf("invalid polling.retry_delay: %w", err)
	}
	if retryDelay < 0 {
		return fmt.Errorf("polling.retry_delay must not be negative (got %v)", retryDelay)
	}
	if retryDelay > constants.MaxRetryDelay {
		return fmt.Errorf("polling.retry_delay is too large (max %v, got %v)", constants.MaxRetryDelay, retryDelay)
	}

	// Validate commands
	for i, cmd := range config.Commands {
		if cmd.Prefix == "" {
			return fmt.Errorf("commands[%d].prefix cannot be empty", i)
		}
		if cmd.Reply == "" {
			return fmt.Errorf("commands[%d] (%s) has no reply", i, cmd.Prefix)
		}
		if len(cmd.Reply) > constants.MaxMessageLength {
			return fmt.Errorf("commands[%d] (%s) reply exceeds %d bytes", i, cmd.Prefix, constants.MaxMessageLength)
		}
	}

	// Validate security settings
	if config.Security.WhitelistEnabled {
		if len(config.Security.AllowedUsers) == 0 {
			return fmt.Errorf("security.allowed_users cannot be empty when whitelist is enabled")
		}
	}

	return nil
}

// ResolveToken returns the configured token, falling back to the keychain
// entry named by api.keychain_account
func (c *Config) ResolveToken() (string, error) {
	if c.API.Token != "" {
		return c.API.Token, nil
	}

	token, err := keychain.Get(c.API.KeychainAccount)
	if err != nil {
		return "", fmt.Errorf("api.token is empty and keychain lookup failed: %w", err)
	}
	logger.WithField("account", c.API.KeychainAccount).Debug("bot-token-loaded-from-keychain")
	return token, nil
}

// LoggerConfig converts the logging section for logger.InitLogger
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:        c.Logging.Level,
		File:         c.Logging.File,
		MaxSize:      c.Logging.MaxSize,
		MaxBackups:   c.Logging.MaxBackups,
		MaxAge:       c.Logging.MaxAge,
		Compress:     c.Logging.Compress,
		EnableStdout: c.Logging.StdoutEnabled(),
	}
}

// StdoutEnabled reports whether logs also go to stdout. Unset means yes.
func (l LoggingConfig) StdoutEnabled() bool {
	if l.EnableStdout == nil {
		return DefaultLogEnableStdout
	}
	return *l.EnableStdout
}

// IsUserAuthorized checks if a user is in the whitelist
func (c *Config) IsUserAuthorized(userID string) bool {
	// If whitelist is disabled, allow all users (warning: not recommended for production)
	if !c.Security.WhitelistEnabled {
		return true
	}

	for _, uid := range c.Security.AllowedUsers {
		if uid == userID {
			return true
		}
	}

	return c.IsAdmin(userID)
}

// IsAdmin checks if a user is an admin
func (c *Config) IsAdmin(userID string) bool {
	for _, adminID := range c.Security.Admins {
		if adminID == userID {
			return true
		}
	}
	return false
}

// HasCommand reports whether a command with prefix is configured
func (c *Config) HasCommand(prefix string) bool {
	for _, cmd := range c.Commands {
		if cmd.Prefix == prefix {
			return true
		}
	}
	return false
}
