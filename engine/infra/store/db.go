package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskweave/taskweave/pkg/logger"
)

// DBInterface is the minimal surface repositories depend on. Both a real
// pgxpool.Pool and pgxmock.PgxPoolIface satisfy it, and so does pgx.Tx.
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Config holds PostgreSQL connection settings. ConnString wins when set;
// otherwise the discrete fields are assembled into one.
type Config struct {
	ConnString string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
}

type DB struct {
	pool *pgxpool.Pool
}

// NewDB opens a connection pool and verifies connectivity.
func NewDB(ctx context.Context, cfg *Config) (*DB, error) {
	connString := cfg.ConnString
	if connString == "" {
		connString = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			valueOrDefault(cfg.Host, "localhost"),
			valueOrDefault(cfg.Port, "5432"),
			valueOrDefault(cfg.User, "postgres"),
			valueOrDefault(cfg.Password, ""),
			valueOrDefault(cfg.DBName, "taskweave"),
			valueOrDefault(cfg.SSLMode, "disable"),
		)
	}

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info("Database connection established",
		"host", cfg.Host,
		"port", cfg.Port,
		"db_name", cfg.DBName,
	)
	return &DB{pool: pool}, nil
}

// Close shuts down the connection pool.
func (db *DB) Close(ctx context.Context) error {
	db.pool.Close()
	logger.FromContext(ctx).Info("Database connection closed")
	return nil
}

// Pool returns the underlying pgxpool.Pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return db.pool.Exec(ctx, sql, arguments...)
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.pool.Query(ctx, sql, args...)
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	return db.pool.Begin(ctx)
}

// WithTx executes fn inside a transaction, rolling back on error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	log := logger.FromContext(ctx)
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error("Failed to rollback transaction", "error", rbErr)
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error("Failed to rollback transaction", "error", rbErr)
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			log.Error("Failed to commit transaction", "error", commitErr)
			err = commitErr
		}
	}()

	err = fn(tx)
	return err
}

func valueOrDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}

// Compile-time check: transactions can stand in for the pool in repositories.
var _ DBInterface = (pgx.Tx)(nil)
