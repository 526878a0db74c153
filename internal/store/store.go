package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"

	// Postgres driver registered as "pgx" for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnsupportedDriver is returned by OpenWith for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Options configures OpenWith.
type Options struct {
	// Driver is DriverSQLite (default) or DriverPostgres.
	Driver string

	// DSN is a file path or SQLite URI for DriverSQLite and a connection
	// string for DriverPostgres.
	DSN string

	// MaxOpenConns caps the Postgres pool. SQLite always uses one connection
	// so that per-connection pragmas hold for every statement.
	MaxOpenConns int

	// Logger receives store diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db      *sql.DB
	dialect string
	logger  *zap.Logger
}

// Open creates a Store backed by the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	return OpenWith(Options{Driver: DriverSQLite, DSN: dsn})
}

// OpenWith connects to the configured database and runs auto-migration.
func OpenWith(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		db      *sql.DB
		dialect string
		err     error
	)
	switch opts.Driver {
	case "", DriverSQLite:
		db, err = openSQLite(opts.DSN)
		dialect = dialectSQLite
	case DriverPostgres:
		db, err = openPostgres(opts.DSN, opts.MaxOpenConns)
		dialect = dialectPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := migrate(context.Background(), entsql.OpenDB(dialect, db)); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	logger.Debug("store opened", zap.String("driver", dialect))
	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

const (
	dialectSQLite   = dialect.SQLite
	dialectPostgres = dialect.Postgres
)

func openSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return db, nil
}

func openPostgres(dsn string, maxOpen int) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("open database: empty postgres connection string")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) q() querier {
	return querier{db: s.db, dialect: s.dialect}
}

// LessonRepo returns a LessonRepo backed by this store.
func (s *Store) LessonRepo() LessonRepo { return &lessonRepo{q: s.q()} }

// StatsRepo returns a StatsRepo backed by this store.
func (s *Store) StatsRepo() StatsRepo { return &statsRepo{q: s.q()} }

// ProgressRepo returns a ProgressRepo backed by this store.
func (s *Store) ProgressRepo() ProgressRepo { return &progressRepo{q: s.q()} }

// AchievementRepo returns an AchievementRepo backed by this store.
func (s *Store) AchievementRepo() AchievementRepo { return &achievementRepo{q: s.q()} }

// PreferencesRepo returns a PreferencesRepo backed by this store.
func (s *Store) PreferencesRepo() PreferencesRepo { return &preferencesRepo{q: s.q()} }

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo { return &eventRepo{q: s.q()} }

// ChallengeRepo returns a ChallengeRepo backed by this store.
func (s *Store) ChallengeRepo() ChallengeRepo { return &challengeRepo{q: s.q()} }

// Tx exposes repositories bound to one database transaction.
type Tx struct {
	q querier
}

// LessonRepo returns a LessonRepo inside the transaction.
func (t *Tx) LessonRepo() LessonRepo { return &lessonRepo{q: t.q} }

// StatsRepo returns a StatsRepo inside the transaction.
func (t *Tx) StatsRepo() StatsRepo { return &statsRepo{q: t.q} }

// ProgressRepo returns a ProgressRepo inside the transaction.
func (t *Tx) ProgressRepo() ProgressRepo { return &progressRepo{q: t.q} }

// AchievementRepo returns an AchievementRepo inside the transaction.
func (t *Tx) AchievementRepo() AchievementRepo { return &achievementRepo{q: t.q} }

// PreferencesRepo returns a PreferencesRepo inside the transaction.
func (t *Tx) PreferencesRepo() PreferencesRepo { return &preferencesRepo{q: t.q} }

// EventRepo returns an EventRepo inside the transaction.
func (t *Tx) EventRepo() EventRepo { return &eventRepo{q: t.q} }

// ChallengeRepo returns a ChallengeRepo inside the transaction.
func (t *Tx) ChallengeRepo() ChallengeRepo { return &challengeRepo{q: t.q} }

// WithinTx runs fn in a transaction, committing when fn returns nil.
// Only repositories obtained from the *Tx may be used inside fn: SQLite
// runs on a single connection, so touching the Store would block.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&Tx{q: querier{db: sqlTx, dialect: s.dialect}}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. APRENDE_DB environment variable
// 2. $XDG_DATA_HOME/aprende/aprende.db
// 3. ~/.local/share/aprende/aprende.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("APRENDE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "aprende", "aprende.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
