// Command worker runs the background jobs of the mentorship hub: today that
// is the reminder sweep.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alem-hub/mentorship-hub/config"
	"github.com/alem-hub/mentorship-hub/internal/app"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/scheduler"
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
	Use:   "worker [command]",
	Short: "Mentorship Hub background worker",
	Long: `Runs scheduled jobs such as session reminders.

Examples:
  # Run the scheduler until interrupted
  worker run

  # Run a single reminder sweep and exit
  worker sweep`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if configFile != "" {
			if err := os.Setenv(config.ConfigFileEnv, configFile); err != nil {
				return err
			}
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a TOML config file (overrides "+config.ConfigFileEnv+")")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSweepCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RUN
// ══════════════════════════════════════════════════════════════════════════════

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the job scheduler until a shutdown signal arrives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := app.NewLogger(cfg).With(logger.Component("worker"))
	log.Info("starting Mentorship Hub worker", logger.String("env", string(cfg.App.Environment)))

	// ─────────────────────────────────────────────────────────────────────────
	// 2. INFRASTRUCTURE
	// ─────────────────────────────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	if a.Memory != nil {
		log.Warn("worker is using the in-memory store and will not see sessions booked through the API")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	sched, err := a.Scheduler()
	if err != nil {
		_ = a.Close(context.Background())
		return err
	}
	sched.OnJobComplete(func(result scheduler.JobResult) {
		if !result.Success {
			log.Warn("job failed", logger.String("job", result.JobName), logger.Err(result.Error))
		}
	})
	if err := sched.Start(ctx); err != nil {
		_ = a.Close(context.Background())
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	for _, job := range sched.ListJobs() {
		log.Info("job registered",
			logger.String("job", job.Name),
			logger.String("schedule", job.Schedule),
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := sched.Stop(); err != nil {
		log.Warn("failed to stop scheduler", logger.Err(err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Error("failed to release resources", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SWEEP
// ══════════════════════════════════════════════════════════════════════════════

func newSweepCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reminder sweep and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be RFC 3339: %w", err)
				}
				now = t
			}
			return sweepOnce(cmd, now)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Sweep as if the current time were this RFC 3339 instant")
	return cmd
}

func sweepOnce(cmd *cobra.Command, now time.Time) error {
	ctx := cmd.Context()
	log := app.NewLogger(cfg).With(logger.Component("worker"))

	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		_ = a.Close(shutdownCtx)
	}()

	sweepCtx, cancel := context.WithTimeout(ctx, cfg.Scheduling.SweepTimeout)
	defer cancel()

	result, err := a.Sweeper().Sweep(sweepCtx, now)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sweep at %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "  sessions scanned: %d\n", result.SessionsScanned)
	okLabel.Fprintf(out, "  reminders sent:   %d\n", result.RemindersSent)
	fmt.Fprintf(out, "  already claimed:  %d\n", result.AlreadyClaimed)
	fmt.Fprintf(out, "  notifications:    %d\n", result.Notifications)
	if result.Errors > 0 {
		warnLabel.Fprintf(out, "  errors:           %d\n", result.Errors)
	}
	fmt.Fprintf(out, "  took:             %s\n", result.Duration.Round(time.Millisecond))
	return nil
}
