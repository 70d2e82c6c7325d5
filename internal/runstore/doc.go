// Package runstore persists run history in SQLite so `fluxcal report` can
// show what past invocations did to each exposure.
//
// The database is an append-only record of completed runs, not coordination
// state: the stage driver never reads it, and deleting it loses nothing but
// history. Schema changes bump the version in schema.go; users delete the
// database to adopt the new schema.
package runstore
