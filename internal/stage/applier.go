package stage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fluxcal/internal/calibration"
	"fluxcal/internal/imageio"
	"fluxcal/internal/services"
)

// responseDivisorGuard replaces non-positive response pixels so the division
// stays finite while heavily suppressing those pixels.
const responseDivisorGuard = 1e9

// Exposure is one observed frame with its uncertainty and quality data, all
// sharing one shape.
type Exposure struct {
	Frame          int
	Class          string
	Data           *imageio.Frame
	DataHeader     *imageio.Header
	Variance       *imageio.Frame
	VarianceHeader *imageio.Header
	Mask           *imageio.Frame
	MaskHeader     *imageio.Header
}

// TypeExcluded reports whether an exposure classification is a calibration
// frame type that flat fields are never applied to.
func TypeExcluded(class string) bool {
	switch strings.ToUpper(strings.TrimSpace(class)) {
	case "ARC", "CBARS":
		return true
	}
	return false
}

// ApplyFlat multiplies the exposure by the flat-field product in place:
// data scales by the flat, variance by its square (the flat is treated as
// exact), and the mask passes through unchanged. All three headers receive
// provenance annotations.
func ApplyFlat(exp *Exposure, cal *calibration.Resolved) error {
	if !exp.Data.SameShape(cal.Frame) {
		return services.Wrap(services.ErrShapeMismatch, "flat", "apply",
			fmt.Sprintf("exposure shape %v vs flat shape %v", exp.Data.Axes, cal.Frame.Axes), nil)
	}

	for i, f := range cal.Frame.Pixels {
		exp.Data.Pixels[i] *= f
		exp.Variance.Pixels[i] *= f * f
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	for _, hdr := range []*imageio.Header{exp.DataHeader, exp.VarianceHeader, exp.MaskHeader} {
		annotateFlat(hdr, cal.Path, stamp)
	}
	return nil
}

func annotateFlat(hdr *imageio.Header, calPath, stamp string) {
	hdr.Set("FLATCOR", true, "flat-field correction applied")
	hdr.Set("FLATIM", filepath.Base(calPath), "flat-field product applied")
	hdr.Set("FLATDATE", stamp, "flat-field correction time")
}

// ApplyResponse divides the image by the zero-guarded response product in
// place. No variance or mask propagation: response correction in this stage
// operates on already-combined images.
func ApplyResponse(frame *imageio.Frame, hdr *imageio.Header, cal *calibration.Resolved) error {
	if !frame.SameShape(cal.Frame) {
		return services.Wrap(services.ErrShapeMismatch, "response", "apply",
			fmt.Sprintf("image shape %v vs response shape %v", frame.Axes, cal.Frame.Axes), nil)
	}

	for i, r := range cal.Frame.Pixels {
		if r <= 0 {
			r = responseDivisorGuard
		}
		frame.Pixels[i] /= r
	}

	hdr.Set("RESPCOR", true, "response correction applied")
	hdr.Set("RESPIM", filepath.Base(cal.Path), "response product applied")
	if frameNo, ok := cal.Header.Int("FRAMENO"); ok {
		hdr.Set("RESPFRM", frameNo, "response source frame number")
	}
	return nil
}
