package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckInput_OK(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "meta.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckInput("dir", dir, KindDir); !r.Passed {
		t.Fatalf("expected dir pass, got: %s", r.Detail)
	}
	if r := CheckInput("file", file, KindFile); !r.Passed {
		t.Fatalf("expected file pass, got: %s", r.Detail)
	}
}

func TestCheckInput_WrongKind(t *testing.T) {
	dir := t.TempDir()
	if r := CheckInput("file", dir, KindFile); r.Passed {
		t.Fatal("expected failure for directory checked as file")
	}
	file := filepath.Join(dir, "x")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckInput("dir", file, KindDir); r.Passed {
		t.Fatal("expected failure for file checked as dir")
	}
}

func TestCheckInput_Missing(t *testing.T) {
	r := CheckInput("meta", filepath.Join(t.TempDir(), "nope.json"), KindFile)
	if r.Passed {
		t.Fatal("expected failure for missing file")
	}
	if !strings.Contains(r.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", r.Detail)
	}
}

func TestCheckOutputUsesNearestAncestor(t *testing.T) {
	base := t.TempDir()
	r := CheckOutput("out", filepath.Join(base, "a", "b", "c"))
	if !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if got := NearestExisting(filepath.Join(base, "a", "b")); got != base {
		t.Fatalf("NearestExisting = %q, want %q", got, base)
	}
}

func TestErrWrapsInputMissing(t *testing.T) {
	dir := t.TempDir()
	results := Run(Plan{
		Files:  map[string]string{"item metadata": filepath.Join(dir, "missing.json")},
		Dirs:   map[string]string{"images": dir},
		Output: filepath.Join(dir, "out"),
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	err := Err(results)
	if !errors.Is(err, ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "item metadata") {
		t.Fatalf("error does not name the input: %v", err)
	}
}

func TestCheckPassesAndReportsFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if err := Check(Plan{Dirs: map[string]string{"root": dir}, Output: filepath.Join(dir, "out")}, nil); err != nil {
		t.Fatalf("Check: %v", err)
	}
	free, err := FreeBytes(dir)
	if err != nil {
		t.Fatalf("FreeBytes: %v", err)
	}
	if free == 0 {
		t.Fatal("expected non-zero free space on temp filesystem")
	}
}
