package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/keepmind9/icqbot/internal/core"
	"github.com/keepmind9/icqbot/internal/keychain"
	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/spf13/cobra"
)

var tokenAccount string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the bot token stored in the OS keychain",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the bot token in the keychain",
	Long: `Store the bot token in the OS keychain so api.token can stay empty.
Without an argument the token is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token = line
		}

		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}

		if err := keychain.Set(tokenAccount, token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored token %s for account %q\n", logger.MaskSecret(token), tokenAccount)
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the bot token from the keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keychain.Delete(tokenAccount); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted token for account %q\n", tokenAccount)
		return nil
	},
}

func init() {
	tokenCmd.PersistentFlags().StringVar(&tokenAccount, "account", core.DefaultKeychainAccount, "Keychain account name")
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
}
