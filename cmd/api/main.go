// Command api serves the mentorship scheduling HTTP API and manages the
// database schema.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alem-hub/mentorship-hub/config"
	"github.com/alem-hub/mentorship-hub/internal/app"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/scheduler"
	httpserver "github.com/alem-hub/mentorship-hub/internal/interface/http"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

var (
	configFile string
	cfg        *config.Config

	okLabel    = color.New(color.FgGreen)
	warnLabel  = color.New(color.FgYellow)
	errorLabel = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:   "api [command]",
	Short: "Mentorship Hub API server",
	Long: `Mentorship Hub schedules mentorship sessions between students and alumni.

Examples:
  # Start the HTTP API
  api serve

  # Apply pending migrations
  api migrate up

  # Use a config file
  api --config ./mentorship.toml serve`,
	PersistentPreRunE: loadConfig,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a TOML config file (overrides "+config.ConfigFileEnv+")")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if configFile != "" {
		if err := os.Setenv(config.ConfigFileEnv, configFile); err != nil {
			return err
		}
	}
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("%s %s (%s)\n", cfg.App.Name, cfg.App.Version, cfg.App.Environment)
			return nil
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVE
// ══════════════════════════════════════════════════════════════════════════════

func newServeCmd() *cobra.Command {
	var withScheduler bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("scheduler") {
				cfg.Scheduler.Enabled = withScheduler
			}
			return serve(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "scheduler", false, "Also run the reminder sweep in this process")
	return cmd
}

func serve(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := app.NewLogger(cfg)
	log.Info("starting Mentorship Hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. INFRASTRUCTURE & APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SCHEDULER (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		if sched, err = a.Scheduler(); err == nil {
			err = sched.Start(ctx)
		}
		if err != nil {
			_ = a.Close(context.Background())
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	srv := httpserver.NewServer(a.HTTPConfig(), a.HTTPDependencies())
	errCh := srv.StartAsync()

	log.Info("Mentorship Hub API is running",
		logger.String("http_address", srv.Address()),
		logger.Bool("scheduler", cfg.Scheduler.Enabled),
		logger.Bool("in_memory", a.Memory != nil),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server error", logger.Err(err))
			serveErr = err
		}
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if sched != nil {
		log.Info("stopping scheduler...")
		if err := sched.Stop(); err != nil {
			log.Warn("failed to stop scheduler", logger.Err(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		shutdownErr = err
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Error("failed to release resources", logger.Err(err))
		shutdownErr = errors.Join(shutdownErr, err)
	}

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}
	return serveErr
}
