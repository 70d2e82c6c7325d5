package runstore

import (
	"context"
	"testing"
	"time"

	"fluxcal/internal/stage"
	"fluxcal/internal/testsupport"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	results := []stage.Result{
		{Frame: 1, Outcome: stage.OutcomeCorrected},
		{Frame: 2, Outcome: stage.OutcomeSkippedNoCalibration, Detail: "no flat associated"},
		{Frame: 3, Outcome: stage.OutcomeErrorInputMissing, Detail: "no input file found"},
	}
	run := Run{
		ID:         "run-1",
		Stage:      "flat",
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Summary:    stage.Summarize(results),
	}
	if err := store.RecordRun(ctx, run, results); err != nil {
		t.Fatalf("record run: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != "run-1" || got.Stage != "flat" {
		t.Errorf("run = %+v", got)
	}
	if got.Summary.Total != 3 || got.Summary.Corrected != 1 || got.Summary.Skipped != 1 || got.Summary.Errors != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if got.StartedAt.Unix() != started.Unix() {
		t.Errorf("started at %v, want %v", got.StartedAt, started)
	}
}

func TestRecentRunsOrdering(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		run := Run{
			ID:         id,
			Stage:      "flat",
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
		}
		if err := store.RecordRun(ctx, run, nil); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want limit 2", len(runs))
	}
	if runs[0].ID != "run-new" || runs[1].ID != "run-mid" {
		t.Errorf("order = %s, %s, want newest first", runs[0].ID, runs[1].ID)
	}
}

func TestRunFrames(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	results := []stage.Result{
		{Frame: 12, Outcome: stage.OutcomeCorrected},
		{Frame: 7, Outcome: stage.OutcomeSkippedOutputExists},
	}
	run := Run{ID: "run-2", Stage: "response", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := store.RecordRun(ctx, run, results); err != nil {
		t.Fatalf("record run: %v", err)
	}

	records, err := store.RunFrames(ctx, "run-2")
	if err != nil {
		t.Fatalf("run frames: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Frame != 7 || records[1].Frame != 12 {
		t.Errorf("frames = %d, %d, want frame order", records[0].Frame, records[1].Frame)
	}
	if records[1].Outcome != stage.OutcomeCorrected {
		t.Errorf("outcome = %s", records[1].Outcome)
	}
	if records[0].Detail != "" {
		t.Errorf("empty detail round-tripped as %q", records[0].Detail)
	}
}

func TestRunFramesUnknownRun(t *testing.T) {
	store := openStore(t)
	records, err := store.RunFrames(context.Background(), "nope")
	if err != nil {
		t.Fatalf("run frames: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records for unknown run", len(records))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	path := first.Path()
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()
	if second.Path() != path {
		t.Errorf("path changed between opens: %q vs %q", second.Path(), path)
	}
}
