package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lumen-ngo/lumen/database"
	"github.com/lumen-ngo/lumen/internal/app"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(app.LoadWorkerConfig)
			if err != nil {
				return err
			}
			return withMigrator(cfg.PGDSN, logger, func(m database.Migrator) error {
				if err := database.Up(m); err != nil {
					return err
				}
				logVersion(m, logger)
				return nil
			})
		},
	}

	var steps int
	var yes bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert database migrations",
		Long: `Revert database migrations. Without --steps every migration is reverted.
WARNING: this can result in data loss.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to migrate down without --yes")
			}
			cfg, logger, err := loadRuntime(app.LoadWorkerConfig)
			if err != nil {
				return err
			}
			return withMigrator(cfg.PGDSN, logger, func(m database.Migrator) error {
				if steps == 0 {
					logger.Warn("migrating down all steps")
				}
				if err := database.Down(m, steps); err != nil {
					return err
				}
				logVersion(m, logger)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to revert (0 reverts all)")
	down.Flags().BoolVar(&yes, "yes", false, "confirm the destructive operation")

	cmd.AddCommand(up, down)
	return cmd
}

func withMigrator(dsn string, logger *slog.Logger, fn func(database.Migrator) error) error {
	m, err := database.NewFromConnectionString(dsn)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Warn("close migrator", slog.Any("error", err))
		}
	}()
	if err := fn(m); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func logVersion(m database.Migrator, logger *slog.Logger) {
	version, dirty, err := m.Version()
	if err != nil {
		logger.Info("database schema has no applied migrations")
		return
	}
	if dirty {
		logger.Warn("migration version is dirty", slog.Uint64("version", uint64(version)))
		return
	}
	logger.Info("migration version", slog.Uint64("version", uint64(version)))
}
