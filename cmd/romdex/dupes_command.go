package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"romdex/internal/dedupe"
	"romdex/internal/romstore"
)

func newDupesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dupes",
		Short: "List files whose content exists more than once in the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *romstore.Store) error {
				records, err := store.LoadExisting(context.Background(), ctx.driveID())
				if err != nil {
					return err
				}
				groups := dedupe.Detect(records)

				if ctx.JSONMode() {
					return writeJSON(cmd, dupesJSON(groups))
				}

				out := cmd.OutOrStdout()
				if len(groups) == 0 {
					fmt.Fprintln(out, "No duplicate content found.")
					return nil
				}

				var wasted int64
				rows := make([][]string, 0, len(groups)*2)
				for _, group := range groups {
					rows = append(rows, []string{
						group.Canonical.Path,
						humanize.Bytes(uint64(group.Canonical.Size)),
						"canonical",
					})
					for _, dup := range group.Copies {
						rows = append(rows, []string{dup.Path, "", "duplicate"})
						wasted += dup.Size
					}
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Path", "Size", "Role"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "%d duplicate groups, %s reclaimable\n", len(groups), humanize.Bytes(uint64(wasted)))
				return nil
			})
		},
	}
}

type dupeGroupJSON struct {
	Key       string   `json:"fingerprint"`
	Canonical string   `json:"canonical"`
	Copies    []string `json:"copies"`
}

func dupesJSON(groups []dedupe.Group) []dupeGroupJSON {
	out := make([]dupeGroupJSON, 0, len(groups))
	for _, group := range groups {
		item := dupeGroupJSON{Key: group.Key, Canonical: group.Canonical.Path}
		for _, dup := range group.Copies {
			item.Copies = append(item.Copies, dup.Path)
		}
		out = append(out, item)
	}
	return out
}
