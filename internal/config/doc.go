// Package config loads, normalizes, and validates fluxcal configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and the correction stages need: reduction directories, the overwrite
// flag, frame-number formatting width, worker count, and logging settings that
// nested calibration builds inherit.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
