package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fluxcal/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory, with every reduction directory created.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RawDir = filepath.Join(base, "raw")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.CalibDir = filepath.Join(base, "calib")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Stage.MinFreeGiB = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("create test directories: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.RawDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", cfg.Paths.RawDir, err)
	}
	return &cfg
}
