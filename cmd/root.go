// Package cmd defines and implements the CLI commands for the tracker executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/legislation-tracker/internal/app"
	"github.com/JakeFAU/legislation-tracker/internal/clock/system"
	"github.com/JakeFAU/legislation-tracker/internal/config"
	"github.com/JakeFAU/legislation-tracker/internal/logging"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. Tests replace it to inject options.
var newApp = app.New

type rootOptions struct {
	configFile string
	envFile    string
	timestamp  string
	dryRun     bool

	app    *app.App
	logger *zap.Logger
}

// newRootCmd creates and configures the root command. Running it without a
// subcommand generates the site.
func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}
	generate := newGenerateCmd(opts)

	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Builds the cannabis legislation tracker site from LegiScan.",
		Long: `tracker searches every configured jurisdiction on LegiScan for cannabis
bills that touch banking, tax, commerce, or industry regulation, then writes a
static HTML page and a JSON backup of the results.`,
		SilenceUsage: true,

		// Builds and injects the application before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: generate.RunE,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default .env if present)")
	addRunFlags(cmd, opts)

	cmd.AddCommand(generate)
	cmd.AddCommand(newServeCmd())
	return cmd, opts
}

func addRunFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().StringVar(&opts.timestamp, "timestamp", "", "fixed generation time (RFC 3339) for reproducible output")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "collect and render but keep every output in memory")
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	if err := loadEnv(o.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.logger = logger

	var appOpts []app.Option
	if o.timestamp != "" {
		ts, err := time.Parse(time.RFC3339, o.timestamp)
		if err != nil {
			return fmt.Errorf("parse --timestamp: %w", err)
		}
		appOpts = append(appOpts, app.WithClock(system.NewFixed(ts)))
	}
	if o.dryRun {
		appOpts = append(appOpts, app.WithDryRun())
	}

	a, err := newApp(cmd.Context(), cfg, logger, appOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	o.app = a

	cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
	return nil
}

// close shuts services down and flushes the logger. It runs whether or not
// the command succeeded.
func (o *rootOptions) close() {
	if o.app != nil {
		if err := o.app.Close(); err != nil {
			o.logger.Warn("error closing application services", zap.Error(err))
		}
	}
	_ = logging.Sync(o.logger)
}

func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, errors.New("application not initialized")
	}
	return a, nil
}

// Execute runs the CLI with ctx and returns the first error.
func Execute(ctx context.Context, args []string) error {
	root, opts := newRootCmd()
	root.SetArgs(args)
	defer opts.close()
	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	return nil
}
