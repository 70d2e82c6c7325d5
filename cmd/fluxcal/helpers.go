package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fluxcal/internal/preflight"
	"fluxcal/internal/stage"
)

func cmdContext() context.Context {
	return context.Background()
}

func printRunSummary(runID, kind string, results []stage.Result, elapsed time.Duration) {
	summary := stage.Summarize(results)
	fmt.Printf("%s run %s: %d exposures, %d corrected, %d skipped, %d errors in %s\n",
		kind, runID, summary.Total, summary.Corrected, summary.Skipped, summary.Errors,
		elapsed.Round(time.Millisecond))
}

func printPreflight(results []preflight.Result) {
	for _, result := range results {
		label := "FAIL"
		if result.Passed {
			label = "OK"
		}
		fmt.Fprintf(os.Stderr, "%-4s %s: %s\n", label, result.Name, result.Detail)
	}
}
