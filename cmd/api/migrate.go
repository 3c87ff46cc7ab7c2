package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alem-hub/mentorship-hub/internal/app"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATE
// ══════════════════════════════════════════════════════════════════════════════

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
					applied, err := m.Migrate(ctx)
					if err != nil {
						return err
					}
					if applied == 0 {
						okLabel.Println("Schema is up to date")
						return nil
					}
					okLabel.Printf("Applied %d migration(s)\n", applied)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
					version, err := m.Rollback(ctx)
					if err != nil {
						return err
					}
					if version == 0 {
						warnLabel.Println("Nothing to roll back")
						return nil
					}
					okLabel.Printf("Rolled back migration %d\n", version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
					list, err := m.Status(ctx)
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
					for _, mig := range list {
						state, at := warnLabel.Sprint("pending"), "-"
						if mig.IsApplied {
							state, at = okLabel.Sprint("applied"), mig.AppliedAt.Format(time.RFC3339)
						}
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", mig.Version, mig.Name, state, at)
					}
					return w.Flush()
				})
			},
		},
	)
	return cmd
}

func withMigrator(ctx context.Context, fn func(ctx context.Context, m *postgres.Migrator) error) error {
	if !cfg.Database.Enabled() {
		return errors.New("migrate: DATABASE_URL or DATABASE_HOST must be set")
	}

	log := app.NewLogger(cfg)
	conn, err := postgres.NewConnection(ctx, app.PostgresConfig(cfg.Database), log)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer conn.Close()

	if err := fn(ctx, postgres.NewMigrator(conn)); err != nil {
		log.Error("migration failed", logger.Err(err))
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
