package core

import "time"

// Config represents the complete icqbot runner configuration
type Config struct {
	API      APIConfig       `yaml:"api" toml:"api"`
	Polling  PollingConfig   `yaml:"polling" toml:"polling"`
	Security SecurityConfig  `yaml:"security" toml:"security"`
	Commands []CommandConfig `yaml:"commands" toml:"commands"`
	Welcome  string          `yaml:"welcome" toml:"welcome"` // Sent to new chat members; {name} is replaced
	Echo     bool            `yaml:"echo" toml:"echo"`       // Repeat plain messages back
	Logging  LoggingConfig   `yaml:"logging" toml:"logging"`
}

// APIConfig represents Bot API access configuration
type APIConfig struct {
	Token           string `yaml:"token" toml:"token"`                       // Bot token; leave empty to read it from the keychain
	KeychainAccount string `yaml:"keychain_account" toml:"keychain_account"` // Keychain account holding the token (default: "default")
	BaseURL         string `yaml:"base_url" toml:"base_url"`
	ParseMode       string `yaml:"parse_mode" toml:"parse_mode"` // HTML or MarkdownV2
}

// PollingConfig represents event polling configuration
type PollingConfig struct {
	PollTime   string `yaml:"poll_time" toml:"poll_time"`     // Long poll wait, e.g. "30s"
	RetryDelay string `yaml:"retry_delay" toml:"retry_delay"` // Pause after a failed fetch, e.g. "1s"
}

// PollTimeDuration returns the validated poll time
func (p PollingConfig) PollTimeDuration() time.Duration {
	d, _ := time.ParseDuration(p.PollTime)
	return d
}

// RetryDelayDuration returns the validated retry delay
func (p PollingConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(p.RetryDelay)
	return d
}

// SecurityConfig represents security and access control configuration
type SecurityConfig struct {
	WhitelistEnabled bool     `yaml:"whitelist_enabled" toml:"whitelist_enabled"`
	AllowedUsers     []string `yaml:"allowed_users" toml:"allowed_users"`
	Admins           []string `yaml:"admins" toml:"admins"`
}

// CommandConfig represents a canned reply for a command prefix
type CommandConfig struct {
	Prefix      string `yaml:"prefix" toml:"prefix"`
	Reply       string `yaml:"reply" toml:"reply"`
	Description string `yaml:"description" toml:"description"` // Shown by /help
	AdminOnly   bool   `yaml:"admin_only" toml:"admin_only"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level" toml:"level"`                 // debug, info, warn, error
	File         string `yaml:"file" toml:"file"`                   // Log file path
	MaxSize      int    `yaml:"max_size" toml:"max_size"`           // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups" toml:"max_backups"`     // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age" toml:"max_age"`             // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress" toml:"compress"`           // Whether to compress old logs
	EnableStdout *bool  `yaml:"enable_stdout" toml:"enable_stdout"` // Also output to stdout (default: true)
}
