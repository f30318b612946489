// Package fsutil holds the small file-system primitives shared by the
// pipelines: all-or-nothing JSON output, file copies, and the advisory lock
// that keeps two runs from writing into the same output directory.
package fsutil
