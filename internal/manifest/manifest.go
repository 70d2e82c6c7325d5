package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"fluxcal/internal/calibration"
	"fluxcal/internal/services"
)

// Entry pairs one exposure with its calibration association.
type Entry struct {
	Frame       int
	Calibration calibration.Reference
}

// Manifest is the ordered list of exposures to process in one run.
type Manifest struct {
	entries []Entry
}

// Entries returns the manifest entries in processing order.
func (m *Manifest) Entries() []Entry {
	return m.entries
}

// Count returns the number of manifest entries.
func (m *Manifest) Count() int {
	return len(m.entries)
}

// FromLists builds a manifest from explicit equal-length frame and calibration
// lists. A calibration value of 0 means no association.
func FromLists(frames, calibs []int) (*Manifest, error) {
	if len(frames) != len(calibs) {
		return nil, services.Wrap(services.ErrValidation, "manifest", "from lists",
			fmt.Sprintf("%d frames but %d calibration references", len(frames), len(calibs)), nil)
	}
	if len(frames) == 0 {
		return nil, services.Wrap(services.ErrValidation, "manifest", "from lists", "no frames given", nil)
	}
	entries := make([]Entry, 0, len(frames))
	for i, frame := range frames {
		if frame <= 0 {
			return nil, services.Wrap(services.ErrValidation, "manifest", "from lists",
				fmt.Sprintf("frame number %d at position %d is not positive", frame, i+1), nil)
		}
		entries = append(entries, Entry{Frame: frame, Calibration: calibration.Reference(calibs[i])})
	}
	return &Manifest{entries: entries}, nil
}

// LoadLinkFile reads a link/association file: one "frame calibration" pair per
// line, 0 in the calibration column meaning no association. Blank lines and
// #-comments are ignored.
func LoadLinkFile(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "manifest", "open link file", path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, services.Wrap(services.ErrValidation, "manifest", "parse link file",
				fmt.Sprintf("%s:%d: expected \"frame calibration\", got %q", path, lineNo, line), nil)
		}
		frame, err := strconv.Atoi(fields[0])
		if err != nil || frame <= 0 {
			return nil, services.Wrap(services.ErrValidation, "manifest", "parse link file",
				fmt.Sprintf("%s:%d: bad frame number %q", path, lineNo, fields[0]), err)
		}
		calib, err := strconv.Atoi(fields[1])
		if err != nil || calib < 0 {
			return nil, services.Wrap(services.ErrValidation, "manifest", "parse link file",
				fmt.Sprintf("%s:%d: bad calibration reference %q", path, lineNo, fields[1]), err)
		}
		entries = append(entries, Entry{Frame: frame, Calibration: calibration.Reference(calib)})
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "manifest", "read link file", path, err)
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrValidation, "manifest", "parse link file",
			fmt.Sprintf("%s contains no entries", path), nil)
	}
	return &Manifest{entries: entries}, nil
}
