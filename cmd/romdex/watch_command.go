package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"romdex/internal/romstore"
	"romdex/internal/scanjob"
	"romdex/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var datFlag string
	var debounceFlag time.Duration
	var initialFlag bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the collection roots and re-scan changed directories",
		Long: "Watch keeps romdex running, observing the collection roots for " +
			"changes. After a burst of changes settles, only the affected " +
			"directories are re-scanned. Scoped re-scans never retire records " +
			"outside the changed directories; run a full scan for that.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			index, err := loadCatalogIndex(cfg, datFlag)
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *romstore.Store) error {
				runCtx, stop := signalContext()
				defer stop()

				out := cmd.OutOrStdout()
				driveID := ctx.driveID()

				runScan := func(scanCtx context.Context, root string, subs []string) {
					// Scope entries apply per root, so each trigger scans
					// through a config narrowed to the root that changed.
					scoped := *cfg
					scoped.Paths.Roots = []string{root}
					if len(subs) == 1 && subs[0] == "." {
						subs = nil
					}

					pipeline := scanjob.NewPipeline(&scoped, store, index, logger)
					job, err := pipeline.Run(scanCtx, scanjob.RunOptions{
						DriveID: driveID,
						Scope:   subs,
					})
					if err != nil {
						fmt.Fprintf(out, "scan failed: %v\n", err)
						return
					}
					snapshot := job.Snapshot()
					fmt.Fprintf(out, "%s %s: %d items, %d skipped, %d errors\n",
						time.Now().Format("15:04:05"), snapshot.Status,
						snapshot.ProcessedItems, snapshot.SkippedItems, snapshot.ErrorItems)
				}

				if initialFlag {
					pipeline := scanjob.NewPipeline(cfg, store, index, logger)
					if _, err := pipeline.Run(runCtx, scanjob.RunOptions{DriveID: driveID}); err != nil {
						return err
					}
				}

				fmt.Fprintf(out, "Watching %d root(s); press Ctrl-C to stop.\n", len(cfg.Paths.Roots))
				return watcher.New(cfg.Paths.Roots, debounceFlag, logger).Run(runCtx, runScan)
			})
		},
	}

	cmd.Flags().StringVar(&datFlag, "dat", "", "Verify against a single DAT file instead of the catalog directory")
	cmd.Flags().DurationVar(&debounceFlag, "debounce", watcher.DefaultDebounce, "How long to wait for changes to settle before scanning")
	cmd.Flags().BoolVar(&initialFlag, "initial", false, "Run a full scan before watching")
	return cmd
}
