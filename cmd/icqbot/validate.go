package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/keepmind9/icqbot/internal/core"
	"github.com/keepmind9/icqbot/internal/keychain"
	"github.com/spf13/cobra"
)

var (
	validateShow bool
	validateJSON bool

	errInvalidConfig = errors.New("configuration is invalid")
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Config      string   `json:"config"`
	Commands    int      `json:"commands"`
	TokenSource string   `json:"token_source,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate icqbot configuration file",
	Long: `Validate the icqbot configuration file without starting the bot.

This command checks:
  - YAML or TOML syntax
  - Environment variable references
  - Polling durations
  - Command definitions
  - Whitelist settings
  - Token availability (config or keychain)

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		path := findConfigFile(configFile, cmd.Flags().Changed("config"))
		if path == "" {
			fmt.Fprintln(out, "No configuration file found")
			fmt.Fprintln(out, "\nSpecify a config file with --config or ensure one exists at:")
			for _, loc := range defaultConfigLocations() {
				fmt.Fprintf(out, "  - %s\n", loc)
			}
			return errInvalidConfig
		}

		cfg, err := core.LoadConfig(path)
		if err != nil {
			outputValidationResult(out, ValidationResult{
				Valid:  false,
				Config: path,
				Errors: []string{err.Error()},
			}, validateJSON)
			return errInvalidConfig
		}

		result := ValidationResult{
			Valid:    true,
			Config:   path,
			Commands: len(cfg.Commands),
		}

		source, err := tokenSource(cfg)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
		}
		result.TokenSource = source
		result.Warnings = validateConfigDetails(cfg)

		if validateShow && !validateJSON {
			showConfig(out, path, cfg)
		}

		outputValidationResult(out, result, validateJSON)

		if !result.Valid {
			return errInvalidConfig
		}
		return nil
	},
}

func defaultConfigLocations() []string {
	return []string{
		"config.yaml",
		"config.toml",
		filepath.Join(os.Getenv("HOME"), ".config/icqbot/config.yaml"),
		"/etc/icqbot/config.yaml",
	}
}

// findConfigFile returns the explicit path, or the first default location
// that exists
func findConfigFile(path string, explicit bool) string {
	if explicit {
		return path
	}
	for _, loc := range defaultConfigLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

func tokenSource(cfg *core.Config) (string, error) {
	if cfg.API.Token != "" {
		return "config", nil
	}
	if _, err := keychain.Get(cfg.API.KeychainAccount); err != nil {
		return "", fmt.Errorf("no bot token: api.token is empty and %v", err)
	}
	return "keychain:" + cfg.API.KeychainAccount, nil
}

func showConfig(out io.Writer, path string, cfg *core.Config) {
	fmt.Fprintf(out, "Configuration loaded: %s\n\n", path)
	fmt.Fprintf(out, "API: %s (parse mode %s)\n", cfg.API.BaseURL, cfg.API.ParseMode)
	fmt.Fprintf(out, "Polling: poll_time=%s retry_delay=%s\n", cfg.Polling.PollTime, cfg.Polling.RetryDelay)
	fmt.Fprintf(out, "\nCommands (%d):\n", len(cfg.Commands))
	for _, c := range cfg.Commands {
		admin := ""
		if c.AdminOnly {
			admin = " (admin only)"
		}
		fmt.Fprintf(out, "  - %s%s\n", c.Prefix, admin)
	}
	fmt.Fprintf(out, "\nWelcome message: %v\n", cfg.Welcome != "")
	fmt.Fprintf(out, "Echo: %v\n", cfg.Echo)
	fmt.Fprintln(out)
}

func outputValidationResult(out io.Writer, result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			fmt.Fprintf(out, "{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Fprintln(out, string(output))
		return
	}

	if result.Valid {
		fmt.Fprintln(out, "Configuration is valid")
		fmt.Fprintf(out, "  - Config: %s\n", result.Config)
		fmt.Fprintf(out, "  - Commands: %d\n", result.Commands)
		fmt.Fprintf(out, "  - Token: %s\n", result.TokenSource)
	} else {
		fmt.Fprintln(out, "Configuration validation failed:")
		if len(result.Errors) > 0 {
			fmt.Fprintln(out, "\nErrors:")
			for _, errMsg := range result.Errors {
				fmt.Fprintf(out, "  - %s\n", errMsg)
			}
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", warning)
		}
	}
}

func validateConfigDetails(cfg *core.Config) []string {
	var warnings []string

	if !cfg.Security.WhitelistEnabled {
		warnings = append(warnings, "Whitelist is disabled - every user can trigger replies")
	}

	if len(cfg.Commands) == 0 && cfg.Welcome == "" && !cfg.Echo {
		warnings = append(warnings, "No commands, welcome message or echo configured - the bot only answers /help and /whoami")
	}

	seen := make(map[string]bool)
	for i, c := range cfg.Commands {
		if seen[c.Prefix] {
			warnings = append(warnings, fmt.Sprintf("Command %s is defined more than once - every matching reply is sent", c.Prefix))
		}
		seen[c.Prefix] = true

		// an earlier prefix that is a prefix of this one always wins
		for _, earlier := range cfg.Commands[:i] {
			if earlier.Prefix != c.Prefix && strings.HasPrefix(c.Prefix, earlier.Prefix) {
				warnings = append(warnings, fmt.Sprintf("Command %s is unreachable - %s is listed first and matches it", c.Prefix, earlier.Prefix))
			}
		}
	}

	return warnings
}

func init() {
	validateCmd.Flags().BoolVar(&validateShow, "show", false, "Show full configuration details")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
