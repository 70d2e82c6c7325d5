package calibration

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// RecordLogging holds the logging settings stored alongside a calibration
// recipe. A nested build inherits the active run's settings instead; see
// InheritLogging.
type RecordLogging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Record is the side-car parameter file describing how to build a calibration
// product that does not exist yet.
type Record struct {
	// Inputs lists the frame numbers combined into the product.
	Inputs []int `toml:"inputs"`
	// Method selects the combine statistic: median (default) or mean.
	Method string `toml:"method"`
	// Normalize scales the combined product to unit mean.
	Normalize bool `toml:"normalize"`

	Logging RecordLogging `toml:"logging"`
}

// LoadRecord parses a TOML parameter record.
func LoadRecord(path string) (*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parameter record: %w", err)
	}
	defer file.Close()

	var rec Record
	if err := toml.NewDecoder(file).Decode(&rec); err != nil {
		return nil, fmt.Errorf("parse parameter record %s: %w", path, err)
	}
	rec.Method = strings.ToLower(strings.TrimSpace(rec.Method))
	if rec.Method == "" {
		rec.Method = "median"
	}
	return &rec, nil
}

// InheritLogging overrides the record's stored logging settings with the
// caller's active ones, so a nested build logs at the run's verbosity and into
// the run's stream rather than whatever the recipe was saved with.
func (r *Record) InheritLogging(level, format string) {
	if level != "" {
		r.Logging.Level = level
	}
	if format != "" {
		r.Logging.Format = format
	}
}
