package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keepmind9/icqbot/internal/core"
	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot",
	Long:  "Start polling the Bot API and answer events as described in the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Starting icqbot with config: %s\n", configFile)
		fmt.Fprintf(out, "API: %s\n", config.API.BaseURL)
		fmt.Fprintf(out, "Commands: %d\n", len(config.Commands))
		fmt.Fprintf(out, "Whitelist enabled: %v\n", config.Security.WhitelistEnabled)

		if err := logger.InitLogger(config.LoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"config_file": configFile,
			"log_level":   config.Logging.Level,
			"log_file":    config.Logging.File,
		}).Info("logger-initialized")
		if !config.Security.WhitelistEnabled {
			logger.Warn("whitelist-disabled-all-users-allowed")
		}

		engine, err := core.NewEngine(config)
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}

		// Setup signal handling for graceful shutdown
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		engineErrChan := make(chan error, 1)
		go func() {
			fmt.Fprintln(out, "\nicqbot engine starting...")
			fmt.Fprintln(out, "Press Ctrl+C to stop")
			engineErrChan <- engine.Run(ctx)
		}()

		// Wait for signal or engine error
		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig.String()).Info("shutdown-signal-received")
			cancel()
			if err := <-engineErrChan; err != nil {
				return err
			}
		case err := <-engineErrChan:
			if err != nil {
				logger.WithField("error", err).Error("engine-failed")
				return fmt.Errorf("engine error: %w", err)
			}
		}

		fmt.Fprintln(out, "icqbot stopped")
		return nil
	},
}
