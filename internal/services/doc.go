// Package services defines the shared error taxonomy and context annotations
// used across the correction stages.
//
// Errors are tagged with exported sentinels so the stage driver can map a
// failure to a per-exposure outcome without string matching. Context helpers
// thread the active frame number, stage name, and run identifier through every
// component call instead of relying on ambient process state.
package services
