package main

import (
	"encoding/json"
	"testing"

	"github.com/keepmind9/icqbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestValidateCommand_ValidConfig(t *testing.T) {
	path := writeTestConfig(t, `
api:
  token: inline-token
security:
  whitelist_enabled: true
  allowed_users: ["alice"]
commands:
  - prefix: "/ping"
    reply: "pong"
`)

	out, err := execute(t, "", "validate", "-c", path, "--json")
	require.NoError(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, path, result.Config)
	assert.Equal(t, 1, result.Commands)
	assert.Equal(t, "config", result.TokenSource)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateCommand_InvalidConfig(t *testing.T) {
	path := writeTestConfig(t, "polling:\n  poll_time: \"10m\"\n")

	out, err := execute(t, "", "validate", "-c", path, "--json")
	assert.ErrorIs(t, err, errInvalidConfig)

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(firstLine(out)), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "poll_time is too large")
}

func TestValidateCommand_TokenFromKeychain(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("icqbot", "ops", "stored"))

	path := writeTestConfig(t, "api:\n  keychain_account: ops\n")
	out, err := execute(t, "", "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Token: keychain:ops")
}

func TestValidateCommand_NoToken(t *testing.T) {
	keyring.MockInit()

	path := writeTestConfig(t, "echo: true\n")
	out, err := execute(t, "", "validate", "-c", path)
	assert.ErrorIs(t, err, errInvalidConfig)
	assert.Contains(t, out, "no bot token")
}

func TestValidateCommand_Show(t *testing.T) {
	path := writeTestConfig(t, `
api:
  token: t
commands:
  - prefix: "/deploy"
    reply: "ok"
    admin_only: true
`)

	out, err := execute(t, "", "validate", "-c", path, "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands (1):")
	assert.Contains(t, out, "/deploy (admin only)")
}

func TestValidateConfigDetails(t *testing.T) {
	tests := []struct {
		name     string
		config   core.Config
		contains []string
	}{
		{
			name:     "whitelist disabled",
			config:   core.Config{Echo: true},
			contains: []string{"Whitelist is disabled"},
		},
		{
			name:     "nothing to answer",
			config:   core.Config{Security: core.SecurityConfig{WhitelistEnabled: true, AllowedUsers: []string{"a"}}},
			contains: []string{"only answers /help and /whoami"},
		},
		{
			name: "shadowed and duplicate commands",
			config: core.Config{
				Security: core.SecurityConfig{WhitelistEnabled: true, AllowedUsers: []string{"a"}},
				Commands: []core.CommandConfig{
					{Prefix: "/h", Reply: "x"},
					{Prefix: "/help", Reply: "y"},
					{Prefix: "/h", Reply: "z"},
				},
			},
			contains: []string{
				"Command /help is unreachable - /h is listed first",
				"Command /h is defined more than once",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := validateConfigDetails(&tt.config)
			joined := ""
			for _, w := range warnings {
				joined += w + "\n"
			}
			for _, want := range tt.contains {
				assert.Contains(t, joined, want)
			}
		})
	}
}

func TestFindConfigFile_Explicit(t *testing.T) {
	assert.Equal(t, "/custom/path.yaml", findConfigFile("/custom/path.yaml", true))
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
