// Package runlog keeps a SQLite ledger of pipeline runs.
//
// Every run, successful or not, is recorded with its id, pipeline, seed,
// output directory, timing and the summary counts it printed. The
// `fashionset history` command lists the ledger newest first.
package runlog
