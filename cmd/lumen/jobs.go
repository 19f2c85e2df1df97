package main

import (
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lumen-ngo/lumen/cmd/lumen/cli"
	"github.com/lumen-ngo/lumen/internal/app"
	"github.com/lumen-ngo/lumen/jobs"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	var opts cli.TriggerOptions
	trigger := &cobra.Command{
		Use:       "trigger <job>",
		Short:     "Enqueue a job immediately",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{jobs.TaskAuditPrune, jobs.TaskSessionsPurge},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(app.LoadWorkerConfig)
			if err != nil {
				return err
			}
			if opts.RetentionDays == 0 {
				opts.RetentionDays = cfg.AuditRetentionDays
			}
			jc := cli.NewJobsCLI(cfg.Redis().Asynq())
			defer closeJobsCLI(jc, logger)
			info, err := jc.Trigger(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			logger.Info("job enqueued", slog.String("type", info.Type), slog.String("id", info.ID))
			return nil
		},
	}
	trigger.Flags().IntVar(&opts.RetentionDays, "retention-days", 0, "audit retention window for audit:prune")
	trigger.Flags().StringSliceVar(&opts.UserIDs, "user", nil, "user ids for sessions:purge")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print default queue statistics as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(app.LoadWorkerConfig)
			if err != nil {
				return err
			}
			jc := cli.NewJobsCLI(cfg.Redis().Asynq())
			defer closeJobsCLI(jc, logger)
			s, err := jc.InspectQueue()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}

	cmd.AddCommand(trigger, stats)
	return cmd
}

func closeJobsCLI(jc *cli.JobsCLI, logger *slog.Logger) {
	if err := jc.Close(); err != nil {
		logger.Warn("jobs cli close", slog.Any("error", err))
	}
}
