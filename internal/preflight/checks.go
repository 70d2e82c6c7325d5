package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"fluxcal/internal/config"
)

// Result captures the outcome of one preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and carries the
// requested permission bits.
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minGiB free.
func CheckFreeSpace(name, path string, minGiB int) Result {
	if minGiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "check disabled"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	freeGiB := float64(stat.Bavail) * float64(stat.Bsize) / (1 << 30)
	if freeGiB < float64(minGiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, need %d GiB)", path, freeGiB, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, freeGiB)}
}

// RunChecks evaluates every environment requirement for a correction run.
func RunChecks(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Raw directory", cfg.Paths.RawDir, unix.R_OK|unix.X_OK),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir, unix.R_OK|unix.W_OK|unix.X_OK),
		CheckDirectoryAccess("Calibration directory", cfg.Paths.CalibDir, unix.R_OK|unix.W_OK|unix.X_OK),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, unix.R_OK|unix.W_OK|unix.X_OK),
		CheckFreeSpace("Work free space", cfg.Paths.WorkDir, cfg.Stage.MinFreeGiB),
	}
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
