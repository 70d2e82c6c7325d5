package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fluxcal/internal/services"
)

func TestFromLists(t *testing.T) {
	m, err := FromLists([]int{1, 2, 3}, []int{5, 0, 5})
	if err != nil {
		t.Fatalf("from lists: %v", err)
	}
	if m.Count() != 3 {
		t.Fatalf("count = %d, want 3", m.Count())
	}

	entries := m.Entries()
	if entries[0].Frame != 1 || entries[0].Calibration.Frame() != 5 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if !entries[1].Calibration.IsNone() {
		t.Errorf("entry 1 calibration %v should be none", entries[1].Calibration)
	}
}

func TestFromListsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		frames []int
		calibs []int
	}{
		{"length mismatch", []int{1, 2}, []int{5}},
		{"empty", nil, nil},
		{"non-positive frame", []int{0}, []int{5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromLists(tc.frames, tc.calibs)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestLoadLinkFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	content := "# frame calibration\n\n12 7\n13 0\n  14   7 \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write link file: %v", err)
	}

	m, err := LoadLinkFile(path)
	if err != nil {
		t.Fatalf("load link file: %v", err)
	}
	if m.Count() != 3 {
		t.Fatalf("count = %d, want 3", m.Count())
	}

	entries := m.Entries()
	if entries[0].Frame != 12 || entries[0].Calibration.Frame() != 7 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if !entries[1].Calibration.IsNone() {
		t.Errorf("entry 1 should have no calibration")
	}
	if entries[2].Frame != 14 {
		t.Errorf("entry 2 frame = %d, want 14", entries[2].Frame)
	}
}

func TestLoadLinkFileRejectsMalformedLines(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"wrong column count", "12 7 9\n"},
		{"bad frame", "zero 7\n"},
		{"negative calibration", "12 -1\n"},
		{"no entries", "# only comments\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "links.txt")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write link file: %v", err)
			}
			if _, err := LoadLinkFile(path); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestLoadLinkFileMissing(t *testing.T) {
	_, err := LoadLinkFile(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
