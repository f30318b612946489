// Package logging assembles structured slog loggers used across fashionset.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standard field keys, and context helpers that tag every line of a run with
// its run id and pipeline name. NewNop gives tests and optional wiring a
// logger that cannot fail.
package logging
