// Package preflight checks the filesystem before a pipeline writes anything.
//
// Required inputs must exist and be readable; a missing one fails the run
// with ErrInputMissing before any output is touched. The output location is
// checked for write access through its nearest existing ancestor, and the
// free space on that filesystem is reported for the log.
package preflight
