package imageio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Frame-name suffixes used by the calibration-correction stages. The letter
// after the family (int/var/msk) records how far a frame has been processed:
// 1 = stage-1 raw, b = bias/dark corrected, f = flat-field corrected.
const (
	SuffixRaw     = "_int1"
	SuffixRawVar  = "_var1"
	SuffixRawMask = "_msk1"

	SuffixPartial     = "_intb"
	SuffixPartialVar  = "_varb"
	SuffixPartialMask = "_mskb"

	SuffixFlatData = "_intf"
	SuffixFlatVar  = "_varf"
	SuffixFlatMask = "_mskf"

	SuffixCombined  = "_img"
	SuffixResponse  = "_imgr"
	SuffixFlatField = "_fld"
	SuffixRespCurve = "_rsp"
)

// FrameName formats the canonical file name for a frame number and suffix,
// e.g. FrameName(42, 4, "_intf") -> "0042_intf.fits".
func FrameName(frame, width int, suffix string) string {
	return fmt.Sprintf("%0*d%s.fits", width, frame, suffix)
}

// FramePath joins dir with the canonical frame file name.
func FramePath(dir string, frame, width int, suffix string) string {
	return filepath.Join(dir, FrameName(frame, width, suffix))
}

// SwapSuffix derives a sibling file name by substituting the trailing suffix
// before the extension, e.g. SwapSuffix("0042_intb.fits", "_intb", "_varb").
// The path is returned unchanged when the expected suffix is absent.
func SwapSuffix(path, old, new string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	if !strings.HasSuffix(stem, old) {
		return path
	}
	return strings.TrimSuffix(stem, old) + new + ext
}
