package main

import (
	"os"

	"github.com/keepmind9/icqbot/internal/core"
	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "icqbot",
	Short: "icqbot is a long-polling bot runner for the ICQ Bot API",
	Long: `icqbot polls the ICQ Bot API for events and answers them according to a
configuration file: canned command replies, welcome messages for new chat
members and an optional echo mode. It also offers one-shot commands to send
messages, inspect pending events and store the bot token in the OS keychain.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(selfCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadClient loads the config, sets up logging and builds an API client
func loadClient() (*core.Config, *api.Client, error) {
	config, err := core.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitLogger(config.LoggerConfig()); err != nil {
		return nil, nil, err
	}

	token, err := config.ResolveToken()
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(token,
		api.WithBaseURL(config.API.BaseURL),
		api.WithParseMode(config.API.ParseMode),
	)
	if err != nil {
		return nil, nil, err
	}
	return config, client, nil
}
