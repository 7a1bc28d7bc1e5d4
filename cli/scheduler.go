package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taskweave/taskweave/engine/trigger"
	"github.com/taskweave/taskweave/engine/workflow"
	"github.com/taskweave/taskweave/pkg/config"
	"github.com/taskweave/taskweave/pkg/logger"
	"go.opentelemetry.io/otel"
)

// SchedulerCmd runs the cron trigger loop without the API server. It is
// meant for deployments that separate the trigger from the API.
func SchedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the standalone cron trigger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cfg := config.FromContext(ctx)
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := db.Close(context.Background()); closeErr != nil {
					logger.FromContext(ctx).Error("failed to close database", "error", closeErr)
				}
			}()
			svc := trigger.NewService(ctx, workflow.NewPostgresRepository(db),
				trigger.NewWebhookRunner(cfg.Server.Timeout),
				trigger.Config{
					PollInterval: cfg.Scheduler.PollInterval,
					MaxWorkers:   cfg.Scheduler.MaxWorkers,
				}, otel.GetMeterProvider().Meter("taskweave/trigger"))
			if err := svc.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			svc.Stop()
			return nil
		},
	}
}
