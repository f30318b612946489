package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fashionset/internal/runlog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		pipeline   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded pipeline runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (history.enabled = false)")
				return nil
			}
			store, err := runlog.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), run)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderRun(run))
				return nil
			}

			runs, err := store.List(cmd.Context(), runlog.Filter{Pipeline: pipeline, Limit: limit})
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []runlog.Run{}
				}
				return printJSON(cmd.OutOrStdout(), runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Only list runs of this pipeline")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func renderHistory(runs []runlog.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.Pipeline,
			run.Status,
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			run.Duration().Round(time.Millisecond).String(),
			run.OutputDir,
		})
	}
	return renderTable([]column{
		{title: "Run"},
		{title: "Pipeline"},
		{title: "Status"},
		{title: "Started"},
		{title: "Duration", numeric: true},
		{title: "Output"},
	}, rows)
}

func renderRun(run *runlog.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:      %s\n", run.ID)
	fmt.Fprintf(&b, "Pipeline: %s\n", run.Pipeline)
	fmt.Fprintf(&b, "Status:   %s\n", run.Status)
	fmt.Fprintf(&b, "Seed:     %d\n", run.Seed)
	fmt.Fprintf(&b, "Output:   %s\n", run.OutputDir)
	fmt.Fprintf(&b, "Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "Duration: %s\n", run.Duration().Round(time.Millisecond))
	if run.Error != "" {
		fmt.Fprintf(&b, "Error:    %s\n", run.Error)
	}
	if len(run.Counts) > 0 {
		keys := make([]string, 0, len(run.Counts))
		for k := range run.Counts {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, humanize.Comma(run.Counts[k])})
		}
		b.WriteString(renderTable(countColumns, rows))
		b.WriteString("\n")
	}
	for _, w := range run.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
