package imageio

import "testing"

func TestFrameName(t *testing.T) {
	cases := []struct {
		frame  int
		width  int
		suffix string
		want   string
	}{
		{42, 4, SuffixFlatData, "0042_intf.fits"},
		{7, 4, SuffixRaw, "0007_int1.fits"},
		{123456, 4, SuffixCombined, "123456_img.fits"},
		{3, 6, SuffixRespCurve, "000003_rsp.fits"},
	}
	for _, tc := range cases {
		got := FrameName(tc.frame, tc.width, tc.suffix)
		if got != tc.want {
			t.Errorf("FrameName(%d, %d, %q) = %q, want %q", tc.frame, tc.width, tc.suffix, got, tc.want)
		}
	}
}

func TestSwapSuffix(t *testing.T) {
	got := SwapSuffix("/data/work/0042_intb.fits", SuffixPartial, SuffixPartialVar)
	if got != "/data/work/0042_varb.fits" {
		t.Errorf("SwapSuffix = %q", got)
	}

	unchanged := SwapSuffix("/data/work/0042_img.fits", SuffixPartial, SuffixPartialVar)
	if unchanged != "/data/work/0042_img.fits" {
		t.Errorf("SwapSuffix on non-matching suffix = %q, want input unchanged", unchanged)
	}
}
