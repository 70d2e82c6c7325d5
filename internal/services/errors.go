package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputMissing marks an exposure whose input file could not be located.
	ErrInputMissing = errors.New("input missing")
	// ErrNoCalibration marks an exposure with no calibration association.
	ErrNoCalibration = errors.New("no calibration association")
	// ErrCalibrationParams marks a calibration product that cannot be built
	// because its parameter record is absent.
	ErrCalibrationParams = errors.New("calibration parameters missing")
	// ErrCalibrationBuild marks a calibration build that was attempted and failed.
	ErrCalibrationBuild = errors.New("calibration build failed")
	// ErrShapeMismatch marks a contract violation between exposure and
	// calibration array shapes. It aborts the run instead of skipping the entry.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrValidation marks bad caller-supplied data.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks configuration gaps discovered at runtime.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later outcome classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Detail carries the human-readable portion of a wrapped stage error.
type Detail struct {
	Message string
}

// Details extracts the message text from a wrapped error, stripping the
// sentinel prefix so log lines and outcome records stay readable.
func Details(err error) Detail {
	if err == nil {
		return Detail{}
	}
	msg := err.Error()
	for _, marker := range []error{
		ErrInputMissing,
		ErrNoCalibration,
		ErrCalibrationParams,
		ErrCalibrationBuild,
		ErrShapeMismatch,
		ErrValidation,
		ErrConfiguration,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			msg = strings.TrimPrefix(msg, prefix)
			break
		}
	}
	return Detail{Message: strings.TrimSpace(msg)}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
