package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fluxcal/internal/runstore"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show run history recorded by past invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runstore.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return printRunFrames(store, runID)
			}
			return printRecentRuns(store, limit)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show per-frame outcomes for one run ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of recent runs to list")

	return cmd
}

func printRecentRuns(store *runstore.Store, limit int) error {
	runs, err := store.RecentRuns(cmdContext(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Stage,
			run.StartedAt.Local().Format(time.DateTime),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			strconv.Itoa(run.Summary.Total),
			strconv.Itoa(run.Summary.Corrected),
			strconv.Itoa(run.Summary.Skipped),
			strconv.Itoa(run.Summary.Errors),
		})
	}
	fmt.Println(renderTable(
		[]string{"Run", "Stage", "Started", "Elapsed", "Total", "Corrected", "Skipped", "Errors"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func printRunFrames(store *runstore.Store, runID string) error {
	records, err := store.RunFrames(cmdContext(), runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no frames recorded for run %s\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Frame),
			string(record.Outcome),
			record.Detail,
		})
	}
	fmt.Println(renderTable(
		[]string{"Frame", "Outcome", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	))
	return nil
}
