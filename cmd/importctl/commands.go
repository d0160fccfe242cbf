package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	app "github.com/mohammadpnp/outreach-import/internal/application/outreach"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/db"
)

func newCreateCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an uploaded file as a new import job",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := c.StartImport.Execute(cmd.Context(), app.StartOutreachImportInput{SourceKey: source})
			if err != nil {
				return err
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source key of the uploaded .csv or .xlsx file (required)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newAdvanceCmd() *cobra.Command {
	var (
		jobID     string
		action    string
		untilDone bool
		retryBusy time.Duration
	)

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Run one slice of VALIDATE or IMPORT for a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			for {
				out, err := c.Advance.Execute(cmd.Context(), app.AdvanceInput{JobID: jobID, Action: action})
				if errors.Is(err, app.ErrImportJobBusy) && untilDone {
					select {
					case <-cmd.Context().Done():
						return cmd.Context().Err()
					case <-time.After(retryBusy):
					}
					continue
				}
				if err != nil {
					return err
				}
				if err := writeJSON(out); err != nil {
					return err
				}
				if !untilDone || out.Done {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Import job UUID (required)")
	cmd.Flags().StringVar(&action, "action", "", "VALIDATE or IMPORT (required)")
	cmd.Flags().BoolVar(&untilDone, "until-done", false, "Repeat until the phase reports done")
	cmd.Flags().DurationVar(&retryBusy, "busy-retry", 500*time.Millisecond, "Wait between attempts when the job is locked")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

func newRunCmd() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive a job through both phases to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, logger, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			start := time.Now()
			if err := c.Runner.Run(cmd.Context(), jobID); err != nil {
				return err
			}
			logger.WithField("job_id", jobID).WithField("took", time.Since(start).String()).Info("import job finished")

			out, err := c.GetJob.Execute(cmd.Context(), app.GetImportJobInput{ID: jobID})
			if err != nil {
				return err
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Import job UUID (required)")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the import tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, logger, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			if err := db.Migrate(cmd.Context(), c.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema applied")
			return nil
		},
	}
}
