// Command jobctl runs the job-orchestrator binary in one of two roles,
// orchestrator or worker, selected by subcommand (spec.md §1).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/banner"
	"github.com/rvhonorato/job-orchestrator/internal/config"
	"github.com/rvhonorato/job-orchestrator/internal/logging"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator"
	"github.com/rvhonorato/job-orchestrator/internal/worker"
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jobctl",
		Short: "Two-tier asynchronous job orchestrator",
	}

	root.AddCommand(versionCmd(), orchestratorCmd(), workerCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func orchestratorCmd() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "orchestrator",
		Short: "Run the durable orchestrator role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrchestrator(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := orchestrator.New(cfg, logger)
			if err != nil {
				return err
			}

			banner.PrintStartup(banner.Info{
				Role:      "orchestrator",
				Addr:      fmt.Sprintf(":%d", cfg.Port),
				DataPath:  cfg.DataPath,
				DBPath:    cfg.DBPath,
				MaxAgeSec: cfg.MaxAge,
			}, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = app.Run(ctx)
			banner.PrintShutdown(logger)
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional TOML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	return cmd
}

func workerCmd() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the ephemeral worker role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWorker(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := worker.New(cfg, logger)
			if err != nil {
				return err
			}

			banner.PrintStartup(banner.Info{
				Role: "worker",
				Addr: fmt.Sprintf(":%d", cfg.Port),
			}, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = app.Run(ctx)
			banner.PrintShutdown(logger)
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional TOML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	return cmd
}
