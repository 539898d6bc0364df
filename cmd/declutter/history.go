package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/declutter/internal/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := history.NewStore(cfg.History.Dir)
			if err != nil {
				return err
			}
			records, err := store.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			fmt.Fprintln(out, renderHistory(records))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many runs (0 for all)")
	return cmd
}

func renderHistory(records []*history.Record) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "When", "Folder", "Moved", "Size", "Issues", "Mode"})

	for _, r := range records {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		mode := "live"
		switch {
		case r.Error != "":
			mode = "failed"
		case r.Declined:
			mode = "declined"
		case r.DryRun:
			mode = "dry-run"
		}
		issues := strconv.Itoa(r.Issues)
		if r.Failed {
			issues += " !"
		}
		tw.AppendRow(table.Row{
			id,
			humanize.Time(r.Timestamp),
			r.Root,
			strconv.Itoa(r.Moved),
			humanize.IBytes(uint64(r.BytesMoved)),
			issues,
			mode,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 50},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tw.Render()
}
