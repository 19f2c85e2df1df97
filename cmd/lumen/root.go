package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lumen-ngo/lumen/internal/app"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lumen",
		Short:         "Lumen admin API",
		Long:          "Lumen serves the admin API for the foundation's content, donations, complaints and users.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newJobsCmd(), newUsersCmd())
	return root
}

// loadRuntime reads configuration and builds the logger every subcommand uses.
// Only serve needs the browser-facing secrets; the others use
// app.LoadWorkerConfig.
func loadRuntime(load func() (*app.Config, error)) (*app.Config, *slog.Logger, error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, err
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
