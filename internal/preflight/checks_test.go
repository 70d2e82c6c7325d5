package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"fluxcal/internal/testsupport"
)

func TestRunChecksHealthyEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunChecks(cfg)
	if len(results) != 5 {
		t.Fatalf("got %d checks, want 5", len(results))
	}
	if !AllPassed(results) {
		for _, result := range results {
			if !result.Passed {
				t.Errorf("check %q failed: %s", result.Name, result.Detail)
			}
		}
	}
}

func TestRunChecksMissingRawDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(cfg.Paths.RawDir); err != nil {
		t.Fatalf("remove raw dir: %v", err)
	}

	results := RunChecks(cfg)
	if AllPassed(results) {
		t.Fatal("checks passed with no raw directory")
	}
	if results[0].Passed {
		t.Errorf("raw directory check passed: %s", results[0].Detail)
	}
}

func TestCheckDirectoryAccessNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result := CheckDirectoryAccess("Raw directory", file, unix.R_OK)
	if result.Passed {
		t.Fatalf("regular file passed directory check: %s", result.Detail)
	}
}

func TestCheckFreeSpaceDisabled(t *testing.T) {
	result := CheckFreeSpace("Work free space", t.TempDir(), 0)
	if !result.Passed {
		t.Fatalf("disabled check failed: %s", result.Detail)
	}
}

func TestCheckFreeSpaceUnreachableThreshold(t *testing.T) {
	// no test filesystem holds an exbibyte of free space
	result := CheckFreeSpace("Work free space", t.TempDir(), 1<<30)
	if result.Passed {
		t.Fatalf("impossible threshold passed: %s", result.Detail)
	}
}
