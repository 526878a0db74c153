package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/aprende/internal/store"
)

// isolateEnv clears variables Load reads so the host environment does
// not leak into tests.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APRENDE_ENV", "APRENDE_USER", "APRENDE_TIMEZONE", "APRENDE_LOG_LEVEL",
		"APRENDE_DATABASE_DRIVER", "APRENDE_DATABASE_PATH", "APRENDE_DATABASE_URL",
		"APRENDE_DATABASE_MAX_OPEN_CONNS", "APRENDE_DB", "DATABASE_URL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, DefaultUser, cfg.User)
	assert.Equal(t, store.DriverSQLite, cfg.DB.Driver)
	assert.Empty(t, cfg.DB.Path)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestLoadFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
env: production
user: ana
timezone: Europe/Madrid
log:
  level: warn
database:
  path: /tmp/aprende-test.db
  max_open_conns: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "ana", cfg.User)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/aprende-test.db", cfg.DB.Path)
	assert.Equal(t, 4, cfg.DB.MaxOpenConns)
	assert.Equal(t, "Europe/Madrid", cfg.Location().String())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "user: ana\ndatabase:\n  path: /from/file.db\n")

	t.Setenv("APRENDE_USER", "ben")
	t.Setenv("APRENDE_DB", "/from/env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ben", cfg.User)
	assert.Equal(t, "/from/env.db", cfg.DB.Path)
}

func TestLoadPostgres(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "database:\n  driver: postgres\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)

	t.Setenv("DATABASE_URL", "postgres://localhost/aprende")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/aprende", cfg.DB.URL)

	opts, err := cfg.StoreOptions("ignored.db")
	require.NoError(t, err)
	assert.Equal(t, store.DriverPostgres, opts.Driver)
	assert.Equal(t, "postgres://localhost/aprende", opts.DSN)
}

func TestLoadErrors(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config path must exist")

	_, err = Load(writeConfig(t, "database:\n  driver: oracle\n"))
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = Load(writeConfig(t, "timezone: Mars/Olympus\n"))
	assert.Error(t, err)
}

func TestStoreOptionsPathPriority(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	cfg := &Config{DB: DB{Driver: store.DriverSQLite, Path: filepath.Join(dir, "cfg", "a.db")}}

	opts, err := cfg.StoreOptions(filepath.Join(dir, "flag", "b.db"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flag", "b.db"), opts.DSN)
	assert.DirExists(t, filepath.Join(dir, "flag"))

	opts, err = cfg.StoreOptions("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cfg", "a.db"), opts.DSN)

	cfg.DB.Path = ""
	opts, err = cfg.StoreOptions("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "aprende", "aprende.db"), opts.DSN)
}
