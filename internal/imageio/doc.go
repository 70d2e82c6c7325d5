// Package imageio reads and writes the FITS frames exchanged between
// reduction stages.
//
// Frames are float32 arrays with their axis lengths; integer and double FITS
// data are widened on read. Header is a portable, ordered card set so
// provenance annotations survive a read-modify-write cycle without depending
// on codec internals. Path helpers derive the suffix-based sibling names
// (_intb/_varb/_mskb and friends) used throughout the pipeline.
package imageio
