package cmd

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/internal/config"
	"github.com/gaze-network/ordbridge/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate database schema",
	}
	cmd.AddCommand(
		newMigrateUpCommand(),
		newMigrateDownCommand(),
	)
	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up [N]",
		Short: "Apply all or N up migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(args, false)
		},
	}
}

func newMigrateDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down [N]",
		Short: "Apply all or N down migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(args, true)
		},
	}
}

func runMigrations(args []string, down bool) error {
	conf, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, "failed to open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, conf.DatabaseUrl)
	if err != nil {
		return errors.Wrap(err, "failed to create migrate instance")
	}
	defer m.Close()

	var steps int
	if len(args) > 0 {
		steps, err = strconv.Atoi(args[0])
		if err != nil || steps <= 0 {
			return errors.New("N must be a positive integer")
		}
	}

	switch {
	case steps == 0 && !down:
		err = m.Up()
	case steps == 0 && down:
		err = m.Down()
	case down:
		err = m.Steps(-steps)
	default:
		err = m.Steps(steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to apply migrations")
	}
	return nil
}
