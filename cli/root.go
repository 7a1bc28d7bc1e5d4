// Package cli contains the taskweave command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskweave/taskweave/pkg/config"
	"github.com/taskweave/taskweave/pkg/logger"
)

// RootCmd builds the taskweave command tree.
func RootCmd() *cobra.Command {
	var (
		logLevel string
		logJSON  bool
		envFile  string
	)
	root := &cobra.Command{
		Use:   "taskweave",
		Short: "Taskweave workflow scheduling service",
		Long:  "Taskweave manages workflow definitions, their cron schedules and the trigger loop that dispatches runs.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.Setup(logLevel, logJSON, false)
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			cfg, err := config.NewService().Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			ctx := config.ContextWithConfig(cmd.Context(), cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default .env)")

	root.AddCommand(
		ServerCmd(),
		SchedulerCmd(),
		ScheduleCmd(),
	)
	return root
}

// commandContext returns the command context, defaulting to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
