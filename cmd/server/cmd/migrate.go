package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vapeshop/catalog-server/internal/storage/postgres"
)

type migrateOptions struct {
	databaseURL string
	path        string
}

func newMigrateCommand() *cobra.Command {
	opts := &migrateOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long: `Apply or roll back the embedded PostgreSQL migrations.

The database is taken from --database-url or DATABASE_URL. Pass --path to run
migrations from a directory instead of the ones built into the binary.`,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL (default: $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "migrations directory (default: embedded)")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.url()
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(url, opts.path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return errors.New("--steps must be positive")
			}
			url, err := opts.url()
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(url, opts.path, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.url()
			if err != nil {
				return err
			}
			v, dirty, err := postgres.MigrationVersion(url, opts.path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func (o *migrateOptions) url() (string, error) {
	if o.databaseURL != "" {
		return o.databaseURL, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", errors.New("DATABASE_URL or --database-url is required")
}
