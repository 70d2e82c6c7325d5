// Package stage contains the calibration-correction engine: the output gate,
// the flat-field and response appliers, and the driver that sequences a
// manifest through them.
//
// The driver records a ProcessingOutcome per exposure and keeps going; the
// only things that abort a run are context cancellation, unwritable outputs,
// and shape-mismatch contract violations. With stage.workers = 1 the manifest
// is processed strictly in order, matching the reference behavior; higher
// worker counts rely on the calibration package's per-product build locks.
package stage
