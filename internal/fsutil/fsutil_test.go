package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteJSONIsAtomicAndReadable(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "items.json")

	payload := map[string][]int{"a": {1, 2}, "b": {3}}
	if err := WriteJSON(target, payload, true); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string][]int
	if err := ReadJSON(target, &decoded); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(decoded) != 2 || len(decoded["a"]) != 2 {
		t.Fatalf("unexpected decoded payload: %v", decoded)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"a\"") {
		t.Fatalf("expected indented output, got %s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteJSONKeepsPreviousFileOnEncodeError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.json")
	if err := os.WriteFile(target, []byte(`{"old":true}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := WriteJSON(target, map[string]any{"bad": func() {}}, false); err == nil {
		t.Fatal("expected encode error")
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"old":true}` {
		t.Fatalf("previous output was replaced: %s", data)
	}
}

func TestCopyFilePreservesContentAndModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	if err := os.WriteFile(src, []byte("image-bytes"), 0o600); err != nil {
		t.Fatalf("write src: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	if err := os.Chtimes(src, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	n, err := CopyFile(src, dst)
	if err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	if n != int64(len("image-bytes")) {
		t.Fatalf("copied %d bytes", n)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "image-bytes" {
		t.Fatalf("unexpected dst content %q (%v)", data, err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Fatalf("modtime = %v, want %v", info.ModTime(), past)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := CopyFile(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "dst.jpg"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if Exists(filepath.Join(dir, "dst.jpg")) {
		t.Fatal("dst should not be created")
	}
}

func TestLockDirRejectsSecondHolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	first, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir: %v", err)
	}
	if !IsFile(first.Path()) {
		t.Fatalf("expected lock file at %s", first.Path())
	}

	if _, err := LockDir(dir); !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	second, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir after unlock: %v", err)
	}
	_ = second.Unlock()
}

func TestPredicates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !IsDir(dir) || IsDir(file) {
		t.Fatal("IsDir mismatch")
	}
	if !IsFile(file) || IsFile(dir) {
		t.Fatal("IsFile mismatch")
	}
	if Exists(filepath.Join(dir, "nope")) {
		t.Fatal("Exists mismatch")
	}
}
