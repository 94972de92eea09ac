package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"romdex/internal/romstore"
	"romdex/internal/scanjob"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var datFlag string

	cmd := &cobra.Command{
		Use:   "scan [subpath...]",
		Short: "Scan the collection roots, hash new files, and verify them",
		Long: "Scan walks the configured roots, hashes new or changed files in a " +
			"single pass (CRC32, MD5, SHA1), matches them against the loaded DAT " +
			"catalogs, and records the results. Unchanged files reuse their stored " +
			"fingerprints. Passing sub-paths restricts the scan; a restricted scan " +
			"never retires records outside its scope.",
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
				fmt.Fprintln(cmd.OutOrStdout(), "No catalogs loaded; files will be recorded as not in any DAT.")
			}

			return ctx.withStore(func(store *romstore.Store) error {
				runCtx, stop := signalContext()
				defer stop()

				pipeline := scanjob.NewPipeline(cfg, store, index, logger)
				reporter := newProgressReporter(cmd.OutOrStdout())
				job, err := pipeline.Run(runCtx, scanjob.RunOptions{
					DriveID: ctx.driveID(),
					Scope:   args,
					Sinks:   []scanjob.Sink{reporter},
				})
				if err != nil {
					return err
				}
				reporter.finish()

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

func printScanSummary(out io.Writer, snapshot scanjob.Snapshot) {
	fmt.Fprintf(out, "Scan %s: %s\n", snapshot.ID, snapshot.Status)
	fmt.Fprintf(out, "  Items:   %s of %s (%s skipped, %s errors)\n",
		humanize.Comma(snapshot.ProcessedItems),
		humanize.Comma(snapshot.TotalItems),
		humanize.Comma(snapshot.SkippedItems),
		humanize.Comma(snapshot.ErrorItems))
	fmt.Fprintf(out, "  Data:    %s of %s\n",
		humanize.Bytes(uint64(snapshot.ProcessedBytes)),
		humanize.Bytes(uint64(snapshot.TotalBytes)))
	if snapshot.StartedAt != nil && snapshot.FinishedAt != nil {
		fmt.Fprintf(out, "  Elapsed: %s\n", snapshot.FinishedAt.Sub(*snapshot.StartedAt).Round(time.Millisecond))
	}
	if snapshot.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:   %s\n", snapshot.ErrorMessage)
	}
}

// progressReporter prints throttled progress lines. On a terminal the line
// rewrites in place; otherwise one line lands every interval.
type progressReporter struct {
	mu       sync.Mutex
	out      io.Writer
	tty      bool
	last     time.Time
	interval time.Duration
	dirty    bool
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{
		out:      out,
		tty:      isTerminal(out),
		interval: 2 * time.Second,
	}
}

// JobUpdated implements scanjob.Sink.
func (r *progressReporter) JobUpdated(snapshot scanjob.Snapshot) {
	if snapshot.Terminal() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if now.Sub(r.last) < r.interval {
		return
	}
	r.last = now

	line := fmt.Sprintf("%s: %s/%s items, %s",
		snapshot.Phase,
		humanize.Comma(snapshot.ProcessedItems),
		humanize.Comma(snapshot.TotalItems),
		humanize.Bytes(uint64(snapshot.ProcessedBytes)))
	if r.tty {
		fmt.Fprintf(r.out, "\r\x1b[2K%s", line)
		r.dirty = true
	} else {
		fmt.Fprintln(r.out, line)
	}
}

// finish terminates an in-place progress line before the summary prints.
func (r *progressReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tty && r.dirty {
		fmt.Fprintln(r.out)
		r.dirty = false
	}
}
