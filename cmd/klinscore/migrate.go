package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/jeffcwolf/klinscore/internal/platform"
)

func newMigrateCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <up|down|version|force> [version]",
		Short: "Manage the history database schema",
		Long: `Applies or inspects the embedded history schema migrations on the configured
database (history.database in the config file, or KLINSCORE_DB_DRIVER and
KLINSCORE_DATABASE_URL).`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "version", "force"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(g, args, cmd.OutOrStdout())
		},
	}
	return cmd
}

func runMigrate(g *globalOpts, args []string, out io.Writer) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	db, err := platform.OpenDB(cfg.History.Database)
	if err != nil {
		return err
	}
	m, err := platform.NewMigrator(db, cfg.History.Database.Driver)
	if err != nil {
		db.Close()
		return err
	}
	// Closing the migrator closes db.
	defer m.Close()

	switch args[0] {
	case "up":
		fmt.Fprintln(os.Stderr, "Running migrations up...")
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintln(out, "No migrations to run (database is up to date)")
			return nil
		}
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		fmt.Fprintln(out, "Migrations completed")

	case "down":
		fmt.Fprintln(os.Stderr, "Rolling back migrations...")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("roll back migrations: %w", err)
		}
		fmt.Fprintln(out, "Rollback completed")

	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "No migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version number")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number %q: %w", args[1], err)
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		fmt.Fprintf(out, "Forced version to: %d\n", v)

	default:
		return fmt.Errorf("unknown migrate command: %s (use: up, down, version, force)", args[0])
	}
	return nil
}
