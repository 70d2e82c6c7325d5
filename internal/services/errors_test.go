package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrNoCalibration, "flat", "resolve", "no flat associated", nil)
	if !errors.Is(err, ErrNoCalibration) {
		t.Fatalf("err = %v, want ErrNoCalibration marker", err)
	}
	want := "no calibration association: flat: resolve: no flat associated"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Wrap(ErrCalibrationBuild, "flat", "build", "combine", cause)
	if !errors.Is(err, ErrCalibrationBuild) {
		t.Fatalf("marker lost: %v", err)
	}
	if got := err.Error(); got != "calibration build failed: flat: build: combine: disk on fire" {
		t.Errorf("message = %q", got)
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := Wrap(nil, "manifest", "parse", "bad line", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation fallback", err)
	}
}

func TestDetailsStripsSentinelPrefix(t *testing.T) {
	err := Wrap(ErrCalibrationParams, "flat", "resolve", "record absent", nil)
	detail := Details(err)
	if detail.Message != "flat: resolve: record absent" {
		t.Errorf("detail = %q", detail.Message)
	}
}

func TestDetailsNil(t *testing.T) {
	if Details(nil).Message != "" {
		t.Error("nil error should yield empty detail")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithFrame(WithStage(WithRunID(t.Context(), "run-1"), "flat"), 42)

	if frame, ok := FrameFromContext(ctx); !ok || frame != 42 {
		t.Errorf("frame = %d (present %v)", frame, ok)
	}
	if stage, ok := StageFromContext(ctx); !ok || stage != "flat" {
		t.Errorf("stage = %q (present %v)", stage, ok)
	}
	if runID, ok := RunIDFromContext(ctx); !ok || runID != "run-1" {
		t.Errorf("run ID = %q (present %v)", runID, ok)
	}
}
