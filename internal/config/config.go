package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/aprende/internal/store"
)

var (
	// ErrUnsupportedDriver is returned for a database.driver other than
	// sqlite or postgres.
	ErrUnsupportedDriver = store.ErrUnsupportedDriver

	// ErrMissingDatabaseURL is returned when postgres is selected without
	// a connection string.
	ErrMissingDatabaseURL = errors.New("missing database url")
)

// DefaultUser is the profile used when none is configured.
const DefaultUser = "default"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string `mapstructure:"env"`      // local, development, production
	User     string `mapstructure:"user"`     // profile whose progress is tracked
	Timezone string `mapstructure:"timezone"` // decides which calendar day "today" is
	Log      Log    `mapstructure:"log"`
	DB       DB     `mapstructure:"database"`
}

// Log contains logging parameters.
type Log struct {
	Level string `mapstructure:"level"`
}

// DB contains database-related configuration parameters.
type DB struct {
	Driver       string `mapstructure:"driver"`         // sqlite or postgres
	Path         string `mapstructure:"path"`           // sqlite file; empty means the XDG default
	URL          string `mapstructure:"url"`            // postgres connection string
	MaxOpenConns int    `mapstructure:"max_open_conns"` // postgres pool size
}

// Load reads configuration from a .env file, an optional config file and
// environment variables prefixed with APRENDE_. An explicit path must
// exist; otherwise config.yaml is looked up in the user config directory
// and the working directory.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "aprende"))
		}
		v.AddConfigPath(".")
	}

	v.SetDefault("env", "local")
	v.SetDefault("user", DefaultUser)
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log.level", "")
	v.SetDefault("database.driver", store.DriverSQLite)
	v.SetDefault("database.path", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)

	v.SetEnvPrefix("APRENDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("database.path", "APRENDE_DB", "APRENDE_DATABASE_PATH")
	_ = v.BindEnv("database.url", "APRENDE_DATABASE_URL", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.DB.URL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.DB.Driver)
	}
	if _, err := ParseTimezone(c.Timezone); err != nil {
		return err
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := ParseTimezone(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StoreOptions builds store options. flagPath, when set, wins over every
// other source of the SQLite path.
func (c *Config) StoreOptions(flagPath string) (store.Options, error) {
	opts := store.Options{
		Driver:       c.DB.Driver,
		MaxOpenConns: c.DB.MaxOpenConns,
	}
	if c.DB.Driver == store.DriverPostgres {
		opts.DSN = c.DB.URL
		return opts, nil
	}

	dsn := flagPath
	if dsn == "" {
		dsn = c.DB.Path
	}
	if dsn == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return store.Options{}, err
		}
		opts.DSN = p
		return opts, nil
	}

	if err := store.EnsureDir(dsn); err != nil {
		return store.Options{}, fmt.Errorf("create database dir: %w", err)
	}
	opts.DSN = dsn
	return opts, nil
}
