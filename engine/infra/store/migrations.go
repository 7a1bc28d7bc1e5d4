package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/taskweave/taskweave/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	migrationOnce sync.Once
	migrationErr  error
)

// ResetMigrationsForTest resets the migration singleton. Test code only.
func ResetMigrationsForTest() {
	migrationOnce = sync.Once{}
	migrationErr = nil
}

// Migrate runs the embedded migrations against the pool's database.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()
	return runEmbeddedMigrations(ctx, sqlDB)
}

// runEmbeddedMigrations applies the embedded SQL migrations once per process,
// guarded by a PostgreSQL advisory lock for multi-instance safety.
func runEmbeddedMigrations(ctx context.Context, db *sql.DB) error {
	migrationOnce.Do(func() {
		const lockID = 7353

		_, err := db.ExecContext(ctx, "SELECT pg_advisory_lock($1)", lockID)
		if err != nil {
			migrationErr = fmt.Errorf("failed to acquire migration lock: %w", err)
			return
		}
		defer func() {
			if _, unlockErr := db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lockID); unlockErr != nil {
				logger.FromContext(ctx).Error("failed to release migration lock", "error", unlockErr)
			}
		}()

		goose.SetBaseFS(migrationsFS)

		if err := goose.SetDialect("postgres"); err != nil {
			migrationErr = fmt.Errorf("failed to set dialect: %w", err)
			return
		}

		if err := goose.Up(db, "migrations"); err != nil {
			migrationErr = fmt.Errorf("migration failed: %w", err)
			return
		}
	})

	return migrationErr
}
