package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownStorageDriver        = errors.New("unknown storage driver")
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string      `mapstructure:"env"` // current application environment (local, dev, production)
	TelegramAPIToken string      `mapstructure:"-"`   // Telegram API token loaded from environment
	Storage          Storage     `mapstructure:"storage"`
	DB               DB          `mapstructure:"database"`
	SQLite           SQLite      `mapstructure:"sqlite"`
	Content          Content     `mapstructure:"content"`
	Writer           Writer      `mapstructure:"writer"`
	Sessions         Sessions    `mapstructure:"sessions"`
	Reminders        Reminders   `mapstructure:"reminders"`
	Leaderboard      Leaderboard `mapstructure:"leaderboard"`
	Log              Log         `mapstructure:"log"`
}

// Storage selects the persistence backend.
type Storage struct {
	Driver string `mapstructure:"driver"` // postgres, sqlite or memory
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// SQLite configures the single-file driver.
type SQLite struct {
	Path string `mapstructure:"path"`
}

// Content points at the sign clips and, optionally, item bank overrides.
type Content struct {
	MediaDir string `mapstructure:"media_dir"`
	Dir      string `mapstructure:"dir"` // empty means embedded item banks
}

// Writer configures the background persistence queue.
type Writer struct {
	QueueSize  int           `mapstructure:"queue_size"`
	Workers    int           `mapstructure:"workers"`
	MaxRetries int           `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Sessions bounds how long an abandoned quiz stays in memory.
type Sessions struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`   // zero keeps sessions until finished or replaced
	SweepSchedule string        `mapstructure:"sweep_schedule"` // cron expression, UTC
}

// Reminders configures focus practice nudges.
type Reminders struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron expression, UTC
}

type Leaderboard struct {
	Size int `mapstructure:"size"`
}

// Log tunes the zap logger. An empty level keeps the environment default.
type Log struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("sqlite.path", "bsl-quest.db")
	v.SetDefault("content.media_dir", "assets/signs")
	v.SetDefault("content.dir", "")
	v.SetDefault("writer.queue_size", 256)
	v.SetDefault("writer.workers", 4)
	v.SetDefault("writer.max_retries", 0)
	v.SetDefault("writer.timeout", "5s")
	v.SetDefault("sessions.idle_timeout", "30m")
	v.SetDefault("sessions.sweep_schedule", "@every 5m")
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 18 * * *")
	v.SetDefault("leaderboard.size", 10)
	v.SetDefault("log.level", "")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("log.level", "LOG_LEVEL")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	switch cfg.Storage.Driver {
	case DriverPostgres:
		cfg.DB.URL = v.GetString("database_url")
		if cfg.DB.URL == "" {
			return nil, ErrMissingEnvironmentVariables
		}
	case DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageDriver, cfg.Storage.Driver)
	}

	return &cfg, nil
}
