package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-ngo/lumen/internal/app"
	"github.com/lumen-ngo/lumen/internal/platform/db"
	"github.com/lumen-ngo/lumen/internal/roles"
	"github.com/lumen-ngo/lumen/internal/users"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff accounts",
	}

	var email, name, passwordEnv string
	bootstrap := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the first administrator account",
		Long: `Create an administrator account. The temporary password is read from the
environment variable named by --password-env and must be changed at first login.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv(passwordEnv)
			if password == "" {
				return fmt.Errorf("%s is not set", passwordEnv)
			}
			cfg, logger, err := loadRuntime(app.LoadWorkerConfig)
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN, db.PoolOptions{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := users.NewService(users.NewRepository(pool), roles.NewRegistry())
			user, err := svc.Bootstrap(cmd.Context(), email, name, password)
			if err != nil {
				if errors.Is(err, users.ErrDuplicateEmail) {
					logger.Info("administrator already exists", slog.String("email", email))
					return nil
				}
				return err
			}
			logger.Info("administrator created", slog.String("id", user.ID), slog.String("email", user.Email))
			return nil
		},
	}
	bootstrap.Flags().StringVar(&email, "email", "", "administrator email")
	bootstrap.Flags().StringVar(&name, "name", "Administrator", "display name")
	bootstrap.Flags().StringVar(&passwordEnv, "password-env", "LUMEN_BOOTSTRAP_PASSWORD", "environment variable holding the temporary password")
	_ = bootstrap.MarkFlagRequired("email")

	cmd.AddCommand(bootstrap)
	return cmd
}
