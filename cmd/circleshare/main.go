package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/circleshare/circleshare/internal/api"
	"github.com/circleshare/circleshare/internal/config"
	"github.com/circleshare/circleshare/internal/storage/sqlite"
	"github.com/circleshare/circleshare/internal/ui"
	"github.com/circleshare/circleshare/pkg/logging"
)

var (
	flagConfig  string
	flagBaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "circleshare",
	Short: "Share your days with your circle",
	Long: `CircleShare is a small private network: you post short updates,
your circle members see them, comment on them, and like them.

Running circleshare with no subcommand opens the interactive client.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()
		return ui.Run(env.client, env.store, slog.Default())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "backend base URL (overrides config)")

	rootCmd.AddCommand(loginCmd, logoutCmd, postCmd, feedCmd, circleCmd, demoCmd)
}

// env bundles what every command needs: resolved config, the on-disk session
// store, and an API client pointed at the backend.
type env struct {
	cfg    *config.Config
	store  *sqlite.SessionStore
	client *api.Client
	reg    *prometheus.Registry
}

func newEnv() (*env, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	store, err := sqlite.New(cfg.SessionDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	reg := prometheus.NewRegistry()
	client := api.New(cfg.BaseURL, store,
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		api.WithMetrics(api.NewMetrics(reg)),
	)

	return &env{cfg: cfg, store: store, client: client, reg: reg}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		slog.Warn("closing session store", "error", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
