package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"romdex/internal/romstore"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show scan job history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *romstore.Store) error {
				driveID := ctx.driveID()
				if allFlag {
					driveID = ""
				}
				jobs, err := store.ListJobs(context.Background(), driveID)
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, jobs)
				}

				out := cmd.OutOrStdout()
				if len(jobs) == 0 {
					fmt.Fprintln(out, "No jobs recorded.")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						shortID(job.ID),
						job.Type,
						job.Status,
						humanize.Comma(job.ProcessedItems),
						humanize.Comma(job.SkippedItems),
						humanize.Comma(job.ErrorItems),
						jobDuration(job),
						job.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Job", "Type", "Status", "Items", "Skipped", "Errors", "Elapsed", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Include jobs from every drive")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func jobDuration(job *romstore.JobRecord) string {
	if job.StartedAt == nil || job.FinishedAt == nil {
		return "-"
	}
	return job.FinishedAt.Sub(*job.StartedAt).Round(time.Second).String()
}
