package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/aprende/internal/config"
	"github.com/abhisek/aprende/internal/learn"
	"github.com/abhisek/aprende/internal/logger"
	"github.com/abhisek/aprende/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "aprende",
	Short:        "Learn in short lessons and quizzes",
	Long:         "Aprende is a terminal learning companion: short lessons, multiple-choice quizzes, daily streaks and points.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides APRENDE_DB env var and config)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/aprende/config.yaml)")
	rootCmd.PersistentFlags().String("user", "", "Profile whose progress is used (overrides config)")

	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// appEnv holds what every command needs. close releases it.
type appEnv struct {
	cfg    *config.Config
	user   string
	logger *zap.Logger
	store  *store.Store
	svc    *learn.Service
}

func (e *appEnv) close() {
	e.store.Close()
	_ = e.logger.Sync()
}

// openEnv loads configuration, builds the logger and opens the store.
// Flags win over config: --db over every other database path source,
// --user over the configured user.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, _ := cmd.Flags().GetString("db")
	opts, err := cfg.StoreOptions(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	opts.Logger = log

	st, err := store.OpenWith(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	user := cfg.User
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		user = u
	}

	return &appEnv{
		cfg:    cfg,
		user:   user,
		logger: log,
		store:  st,
		svc: learn.NewService(st, learn.Options{
			Location: cfg.Location(),
			Logger:   log,
		}),
	}, nil
}
