package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/spencer-p/celesun/pkg/data"
	"github.com/spencer-p/celesun/pkg/logging"
	"github.com/spencer-p/celesun/pkg/settings"
)

// Config is read from CELESUN_* environment variables.
type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`

	AppEnv   string `split_words:"true" default:"prod"`
	LogLevel string `split_words:"true" default:"info"`

	// Almanac picks the sunrise algorithm, keep94 or equation.
	Almanac      string        `default:"keep94"`
	TickInterval time.Duration `split_words:"true" default:"1s"`
	ArcSamples   int           `split_words:"true" default:"50"`

	// SettingsFile defaults to celesun/config.json in the user's config
	// directory. It is ignored when a database is configured, either by
	// DatabaseDSN or by the libpq PGHOST variable.
	SettingsFile string `split_words:"true"`
	DatabaseDSN  string `split_words:"true"`
	Profile      string `default:"default"`

	SessionKey    string `split_words:"true" default:"deadbeef"`
	EncryptionKey string `split_words:"true" default:"deadbeef"`
	SecureCookies bool   `split_words:"true" default:"true"`
}

func loadConfig() (Config, slog.Level, error) {
	var env Config
	if err := envconfig.Process("celesun", &env); err != nil {
		return env, slog.LevelInfo, err
	}
	switch env.AppEnv {
	case logging.EnvDev, logging.EnvProd:
	default:
		return env, slog.LevelInfo, fmt.Errorf("invalid app env %q (allowed: %s, %s)", env.AppEnv, logging.EnvDev, logging.EnvProd)
	}
	if env.TickInterval <= 0 {
		return env, slog.LevelInfo, fmt.Errorf("tick interval must be positive, got %s", env.TickInterval)
	}
	level, err := logging.ParseLevel(env.LogLevel)
	return env, level, err
}

// databaseDSN returns the postgres DSN to use, or "" for the settings file.
func databaseDSN(env Config) string {
	if env.DatabaseDSN != "" {
		return env.DatabaseDSN
	}
	if os.Getenv("PGHOST") != "" {
		return data.DSNFromEnv()
	}
	return ""
}

func openStore(env Config) (settings.Store, error) {
	if dsn := databaseDSN(env); dsn != "" {
		return data.OpenPostgres(dsn, env.Profile)
	}
	path := env.SettingsFile
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return settings.FileStore{Path: path}, nil
}

// initialSettings never fails; a broken store is logged and the defaults are
// used until the next successful save.
func initialSettings(ctx context.Context, store settings.Store, logger *slog.Logger) settings.Settings {
	s, err := store.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "err", err)
		return settings.Defaults()
	}
	return s
}
