// Package calibration resolves which calibration product applies to an
// exposure and builds missing products on demand.
//
// A product is identified purely by its on-disk name derived from the
// reference frame number; rebuild decisions are driven by file presence, so a
// completed build is reused by every later exposure (and every later run)
// that shares the reference. Builds of the same product are serialized by an
// in-process mutex plus a flock file lock, and a nested build inherits the
// caller's logging settings in place of the ones stored in its parameter
// record.
package calibration
