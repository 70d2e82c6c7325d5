package calibration

// Reference associates an exposure with the calibration product derived from
// the given frame number. Zero (or negative) is the sentinel for "no
// calibration associated".
type Reference int

// None is the sentinel reference meaning no calibration applies.
const None Reference = 0

// IsNone reports whether the reference is the no-calibration sentinel.
func (r Reference) IsNone() bool {
	return r <= 0
}

// Frame returns the calibration frame number.
func (r Reference) Frame() int {
	return int(r)
}
