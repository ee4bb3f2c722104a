package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

type config struct {
	Port                 int
	Storage              string
	DatabaseURL          string
	MigrationsPath       string
	RequestTimeout       time.Duration
	NotificationsEnabled bool
	NotificationsBaseURL string
	NotificationsTimeout time.Duration
	LogLevel             string
	LogFormat            string
	RateLimitRPS         float64
	RateLimitBurst       int
}

/* Reads the configuration from the environment and, when path is set, from a config file. Environment wins. */
func loadConfig(path string) (config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("storage", storagePostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("database_migrations_path", "migrations")
	v.SetDefault("http_request_timeout", 2*time.Second)
	v.SetDefault("notifications_enabled", false)
	v.SetDefault("notifications_base_url", "https://ntfy.sh")
	v.SetDefault("notifications_timeout", 2*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("rate_limit_rps", 0)
	v.SetDefault("rate_limit_burst", 20)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := config{
		Port:                 v.GetInt("port"),
		Storage:              strings.ToLower(v.GetString("storage")),
		DatabaseURL:          v.GetString("database_url"),
		MigrationsPath:       v.GetString("database_migrations_path"),
		RequestTimeout:       v.GetDuration("http_request_timeout"),
		NotificationsEnabled: v.GetBool("notifications_enabled"),
		NotificationsBaseURL: v.GetString("notifications_base_url"),
		NotificationsTimeout: v.GetDuration("notifications_timeout"),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		RateLimitRPS:         v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:       v.GetInt("rate_limit_burst"),
	}
	return cfg, cfg.validate()
}

func (cfg config) validate() error {
	var errs []error
	if cfg.Storage != storagePostgres && cfg.Storage != storageMemory {
		errs = append(errs, fmt.Errorf("storage must be %s or %s, got %q", storagePostgres, storageMemory, cfg.Storage))
	}
	if cfg.Storage == storagePostgres && cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required with postgres storage"))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", cfg.Port))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

/* Builds the process logger. The console format is meant for a terminal, json for log collectors. */
func newLogger(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parsing log level: %w", err)
	}

	switch strings.ToLower(format) {
	case "json":
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("log format must be console or json, got %q", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func stderrLogger(cfg config) (zerolog.Logger, error) {
	return newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
}
