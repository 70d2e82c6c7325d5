package stage

import "fluxcal/internal/fileutil"

// ShouldProcess decides whether an exposure needs processing at all: true when
// overwriting is allowed or the output does not exist yet. The gate runs
// before any calibration resolution so a skipped exposure never triggers a
// product build.
func ShouldProcess(outputPath string, overwrite bool) bool {
	if overwrite {
		return true
	}
	return !fileutil.Exists(outputPath)
}
