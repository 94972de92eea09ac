package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"romdex/internal/romstore"
	"romdex/internal/verify"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize verification results for the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter verify.Status
			if statusFlag != "" {
				parsed, ok := verify.ParseStatus(statusFlag)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFlag)
				}
				filter = parsed
			}

			return ctx.withStore(func(store *romstore.Store) error {
				records, err := store.LoadExisting(context.Background(), ctx.driveID())
				if err != nil {
					return err
				}

				if filter != "" {
					filtered := records[:0]
					for _, record := range records {
						if record.Status == filter {
							filtered = append(filtered, record)
						}
					}
					records = filtered
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, reportJSON(records))
				}

				out := cmd.OutOrStdout()
				if filter != "" {
					fmt.Fprintln(out, recordTable(records))
					fmt.Fprintf(out, "%s records: %s\n", filter, humanize.Comma(int64(len(records))))
					return nil
				}

				fmt.Fprintln(out, statusSummaryTable(records))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "List records with one status (verified, not_in_dat, bad_dump, wrong_name, duplicate, unknown)")
	return cmd
}

func statusSummaryTable(records []*romstore.RomRecord) string {
	counts := make(map[verify.Status]int)
	sizes := make(map[verify.Status]int64)
	var totalSize int64
	for _, record := range records {
		counts[record.Status]++
		sizes[record.Status] += record.Size
		totalSize += record.Size
	}

	order := []verify.Status{
		verify.StatusVerified,
		verify.StatusWrongName,
		verify.StatusBadDump,
		verify.StatusNotInDat,
		verify.StatusDuplicate,
		verify.StatusUnknown,
	}

	rows := make([][]string, 0, len(order)+1)
	for _, status := range order {
		if counts[status] == 0 {
			continue
		}
		rows = append(rows, []string{
			string(status),
			humanize.Comma(int64(counts[status])),
			humanize.Bytes(uint64(sizes[status])),
		})
	}
	rows = append(rows, []string{
		"total",
		humanize.Comma(int64(len(records))),
		humanize.Bytes(uint64(totalSize)),
	})

	return renderTable(
		[]string{"Status", "Files", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}

func recordTable(records []*romstore.RomRecord) string {
	sorted := append([]*romstore.RomRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	rows := make([][]string, 0, len(sorted))
	for _, record := range sorted {
		matched := record.MatchedName
		if matched == "" {
			matched = "-"
		}
		rows = append(rows, []string{
			record.Path,
			humanize.Bytes(uint64(record.Size)),
			string(record.Status),
			matched,
		})
	}

	return renderTable(
		[]string{"Path", "Size", "Status", "Catalog Name"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
}

type reportRecordJSON struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Status       string `json:"status"`
	CRC32        string `json:"crc32,omitempty"`
	MD5          string `json:"md5,omitempty"`
	SHA1         string `json:"sha1,omitempty"`
	MatchedName  string `json:"matched_name,omitempty"`
	MatchedTitle string `json:"matched_title,omitempty"`
}

func reportJSON(records []*romstore.RomRecord) []reportRecordJSON {
	out := make([]reportRecordJSON, 0, len(records))
	for _, record := range records {
		item := reportRecordJSON{
			Path:         record.Path,
			Size:         record.Size,
			Status:       string(record.Status),
			MatchedName:  record.MatchedName,
			MatchedTitle: record.MatchedTitle,
		}
		if record.Fingerprint != nil {
			item.CRC32 = record.Fingerprint.CRC32
			item.MD5 = record.Fingerprint.MD5
			item.SHA1 = record.Fingerprint.SHA1
		}
		out = append(out, item)
	}
	return out
}
