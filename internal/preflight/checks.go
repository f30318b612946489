package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrInputMissing marks a required input file or directory that does not exist
// or cannot be read.
var ErrInputMissing = errors.New("required input missing")

// Kind says what a checked path must be.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Path   string
	Passed bool
	Detail string
	// Input marks checks whose failure means ErrInputMissing.
	Input bool
}

// CheckInput verifies that path exists, has the expected kind and is readable.
func CheckInput(name, path string, kind Kind) Result {
	res := Result{Name: name, Path: path, Input: true}
	if path == "" {
		res.Detail = "path not configured"
		return res
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Detail = fmt.Sprintf("%s (error: does not exist)", path)
		} else {
			res.Detail = fmt.Sprintf("%s (error: stat: %v)", path, err)
		}
		return res
	}
	switch {
	case kind == KindDir && !info.IsDir():
		res.Detail = fmt.Sprintf("%s (error: is not a directory)", path)
		return res
	case kind == KindFile && !info.Mode().IsRegular():
		res.Detail = fmt.Sprintf("%s (error: is not a regular file)", path)
		return res
	}
	mode := uint32(unix.R_OK)
	if kind == KindDir {
		mode |= unix.X_OK
	}
	if err := unix.Access(path, mode); err != nil {
		res.Detail = fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)
		return res
	}
	res.Passed = true
	res.Detail = fmt.Sprintf("%s (%s readable)", path, kind)
	return res
}

// CheckOutput verifies that path, or its nearest existing ancestor, is a
// writable directory.
func CheckOutput(name, path string) Result {
	res := Result{Name: name, Path: path}
	if path == "" {
		res.Detail = "path not configured"
		return res
	}
	existing := NearestExisting(path)
	info, err := os.Stat(existing)
	if err != nil {
		res.Detail = fmt.Sprintf("%s (error: stat: %v)", existing, err)
		return res
	}
	if !info.IsDir() {
		res.Detail = fmt.Sprintf("%s (error: is not a directory)", existing)
		return res
	}
	if err := unix.Access(existing, unix.W_OK|unix.X_OK); err != nil {
		res.Detail = fmt.Sprintf("%s (error: not writable: %v)", existing, err)
		return res
	}
	res.Passed = true
	res.Detail = fmt.Sprintf("%s (writable)", existing)
	return res
}

// NearestExisting walks up from path until it finds an entry that exists.
func NearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}

// FreeBytes reports the space available to unprivileged users on the
// filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(NearestExisting(path), &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
