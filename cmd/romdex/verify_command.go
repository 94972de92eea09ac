package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"romdex/internal/romstore"
	"romdex/internal/scanjob"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var datFlag string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-match stored fingerprints against the catalogs without rehashing",
		Long: "Verify re-runs catalog matching over every already hashed record. " +
			"File content is never read, so it is cheap to run after importing a " +
			"new or updated DAT catalog.",
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
			if index == nil {
				return fmt.Errorf("no catalogs found; add DAT files to %s or pass --dat", cfg.Paths.CatalogDir)
			}

			return ctx.withStore(func(store *romstore.Store) error {
				runCtx, stop := signalContext()
				defer stop()

				pipeline := scanjob.NewPipeline(cfg, store, index, logger)
				job, err := pipeline.Rematch(runCtx, scanjob.RunOptions{DriveID: ctx.driveID()})
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, job.Record())
				}
				printScanSummary(cmd.OutOrStdout(), job.Snapshot())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&datFlag, "dat", "", "Verify against a single DAT file instead of the catalog directory")
	return cmd
}
