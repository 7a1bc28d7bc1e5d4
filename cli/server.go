package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taskweave/taskweave/engine/infra/server"
	"github.com/taskweave/taskweave/engine/infra/store"
	"github.com/taskweave/taskweave/engine/trigger"
	"github.com/taskweave/taskweave/pkg/config"
	"github.com/taskweave/taskweave/pkg/logger"
	"go.opentelemetry.io/otel"
)

// ServerCmd starts the API server with an embedded cron trigger.
func ServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the API server",
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
			srv := server.New(ctx, cfg, db)
			if cfg.Scheduler.Enabled {
				svc := trigger.NewService(ctx, srv.Repo(),
					trigger.NewWebhookRunner(cfg.Server.Timeout),
					trigger.Config{
						PollInterval: cfg.Scheduler.PollInterval,
						MaxWorkers:   cfg.Scheduler.MaxWorkers,
					}, otel.GetMeterProvider().Meter("taskweave/trigger"))
				if err := svc.Start(ctx); err != nil {
					return err
				}
				defer svc.Stop()
			}
			return srv.Run(ctx)
		},
	}
}

// openStore connects to PostgreSQL and applies migrations when enabled.
func openStore(ctx context.Context, cfg *config.Config) (*store.DB, error) {
	db, err := store.NewDB(ctx, &store.Config{
		ConnString: cfg.Database.ConnString,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password.Value(),
		DBName:     cfg.Database.DBName,
		SSLMode:    cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			closeErr := db.Close(ctx)
			if closeErr != nil {
				logger.FromContext(ctx).Error("failed to close database", "error", closeErr)
			}
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return db, nil
}
