package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	Scheduler SchedulerConfig `koanf:"scheduler" validate:"required"`
	Runtime   RuntimeConfig   `koanf:"runtime"   validate:"required"`
	CLI       CLIConfig       `koanf:"cli"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"    validate:"required"        env:"SERVER_HOST"`
	Port    int           `koanf:"port"    validate:"min=1,max=65535" env:"SERVER_PORT"`
	Timeout time.Duration `koanf:"timeout"                            env:"SERVER_TIMEOUT"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	ConnString  string          `koanf:"conn_string"  env:"DB_CONN_STRING"`
	Host        string          `koanf:"host"         env:"DB_HOST"`
	Port        string          `koanf:"port"         env:"DB_PORT"`
	User        string          `koanf:"user"         env:"DB_USER"`
	Password    SensitiveString `koanf:"password"     env:"DB_PASSWORD"    sensitive:"true"`
	DBName      string          `koanf:"name"         env:"DB_NAME"`
	SSLMode     string          `koanf:"ssl_mode"     env:"DB_SSL_MODE"`
	AutoMigrate bool            `koanf:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// SchedulerConfig contains cron trigger settings.
type SchedulerConfig struct {
	Enabled      bool          `koanf:"enabled"       env:"SCHEDULER_ENABLED"`
	PollInterval time.Duration `koanf:"poll_interval" validate:"min=1s" env:"SCHEDULER_POLL_INTERVAL"`
	MaxWorkers   int           `koanf:"max_workers"   validate:"min=1"  env:"SCHEDULER_MAX_WORKERS"`
}

// RuntimeConfig contains process-wide runtime settings.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error"          env:"RUNTIME_LOG_LEVEL"`
	LogJSON     bool   `koanf:"log_json"    env:"RUNTIME_LOG_JSON"`
}

// CLIConfig contains settings for client-side commands.
type CLIConfig struct {
	ServerURL string          `koanf:"server_url" env:"TASKWEAVE_SERVER_URL"`
	APIKey    SensitiveString `koanf:"api_key"    env:"TASKWEAVE_API_KEY" sensitive:"true"`
	Timeout   time.Duration   `koanf:"timeout"    env:"TASKWEAVE_CLI_TIMEOUT"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			DBName:      "taskweave",
			SSLMode:     "disable",
			AutoMigrate: true,
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			PollInterval: 60 * time.Second,
			MaxWorkers:   10,
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		CLI: CLIConfig{
			ServerURL: "http://localhost:8080",
			Timeout:   30 * time.Second,
		},
	}
}
