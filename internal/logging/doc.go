// Package logging wires log/slog with the console and JSON handlers used by
// the correction stages.
//
// The console handler emits one line per record with a leading component tag;
// the JSON handler is for machine consumption. Field-name constants and
// context helpers keep frame numbers, stage names, and run identifiers
// consistent across every log line of a run.
package logging
