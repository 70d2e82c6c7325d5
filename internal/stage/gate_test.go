package stage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShouldProcess(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "0001_intf.fits")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	missing := filepath.Join(dir, "0002_intf.fits")

	if ShouldProcess(existing, false) {
		t.Error("existing output without overwrite should not process")
	}
	if !ShouldProcess(existing, true) {
		t.Error("overwrite should always process")
	}
	if !ShouldProcess(missing, false) {
		t.Error("missing output should process")
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Frame: 1, Outcome: OutcomeCorrected},
		{Frame: 2, Outcome: OutcomeSkippedOutputExists},
		{Frame: 3, Outcome: OutcomeSkippedNoCalibration},
		{Frame: 4, Outcome: OutcomeSkippedTypeExcluded},
		{Frame: 5, Outcome: OutcomeErrorInputMissing},
		{Frame: 6, Outcome: OutcomeErrorCalibrationMissing},
	}
	summary := Summarize(results)
	if summary.Total != 6 || summary.Corrected != 1 || summary.Skipped != 3 || summary.Errors != 2 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestOutcomeIsError(t *testing.T) {
	if OutcomeCorrected.IsError() || OutcomeSkippedNoCalibration.IsError() {
		t.Error("benign outcomes flagged as errors")
	}
	if !OutcomeErrorInputMissing.IsError() || !OutcomeErrorCalibrationMissing.IsError() {
		t.Error("error outcomes not flagged")
	}
}
