package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mbertin/auction-desk/internal/api"
	"github.com/mbertin/auction-desk/internal/app"
	"github.com/mbertin/auction-desk/internal/credential"
	"github.com/mbertin/auction-desk/internal/dialog"
	"github.com/mbertin/auction-desk/internal/model"
	"github.com/mbertin/auction-desk/internal/notify"
	"github.com/mbertin/auction-desk/internal/store"
)

var (
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "auctiondesk",
	Short: "Terminal client for the auction marketplace",
	Long: `auctiondesk is a terminal client for the auction marketplace API.

Browse listings, place bids, manage your wishlist, and buy credits.
Administrators additionally get moderation tools and a live activity
feed of new listings, bids, purchases, and auction completions.`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run() error {
	// A local .env is convenient in development; missing is fine.
	_ = godotenv.Load()

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err = buildLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	dataDir := model.DefaultDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewSQLiteStore(filepath.Join(dataDir, "auctiondesk.db"))
	if err != nil {
		return fmt.Errorf("opening local database: %w", err)
	}
	defer db.Close()

	token, err := credential.Get(credential.TokenKey)
	if err != nil {
		// No stored token means the login screen comes up first.
		token = ""
	}

	client := api.NewClient(cfg.API.BaseURL, token, time.Duration(cfg.API.TimeoutSec)*time.Second)
	notifStore := notify.NewStore(context.Background(), db)
	broker := dialog.NewBroker()

	logger.Info("starting auctiondesk",
		zap.String("api_url", cfg.API.BaseURL),
		zap.Int("poll_interval_sec", cfg.Watch.PollIntervalSec))

	m := app.New(app.Options{
		Client:       client,
		Store:        db,
		Broker:       broker,
		Notify:       notifStore,
		PollInterval: time.Duration(cfg.Watch.PollIntervalSec) * time.Second,
		Logger:       logger,
		Token:        token,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// buildLogger writes structured logs to the configured file. The
// terminal is owned by the UI, so nothing goes to stderr.
func buildLogger(cfg model.LogConfig) (*zap.Logger, error) {
	if cfg.Path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.Path}
	zc.ErrorOutputPaths = []string{cfg.Path}
	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
