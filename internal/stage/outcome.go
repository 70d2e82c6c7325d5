package stage

// Outcome classifies what happened to one manifest entry.
type Outcome string

const (
	OutcomeCorrected               Outcome = "corrected"
	OutcomeSkippedOutputExists     Outcome = "skipped-output-exists"
	OutcomeSkippedNoCalibration    Outcome = "skipped-no-calibration"
	OutcomeSkippedTypeExcluded     Outcome = "skipped-type-excluded"
	OutcomeErrorInputMissing       Outcome = "error-input-missing"
	OutcomeErrorCalibrationMissing Outcome = "error-calibration-missing"
)

// IsError reports whether the outcome represents a per-entry failure rather
// than a benign skip.
func (o Outcome) IsError() bool {
	switch o {
	case OutcomeErrorInputMissing, OutcomeErrorCalibrationMissing:
		return true
	}
	return false
}

// Result is the recorded outcome for one exposure.
type Result struct {
	Frame   int
	Outcome Outcome
	Detail  string
}

// Summary aggregates the results of one run.
type Summary struct {
	Total     int
	Corrected int
	Skipped   int
	Errors    int
}

// Summarize tallies results into a run summary.
func Summarize(results []Result) Summary {
	summary := Summary{Total: len(results)}
	for _, result := range results {
		switch {
		case result.Outcome == OutcomeCorrected:
			summary.Corrected++
		case result.Outcome.IsError():
			summary.Errors++
		default:
			summary.Skipped++
		}
	}
	return summary
}
