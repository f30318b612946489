package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolverProbesExtensionsInOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "100.png"), "png")
	writeFile(t, filepath.Join(root, "100.jpeg"), "jpeg")
	writeFile(t, filepath.Join(root, "200.jpeg"), "jpeg")
	if err := os.Mkdir(filepath.Join(root, "300.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	r := NewResolver(root, nil)
	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"100", filepath.Join(root, "100.png"), true},
		{"200", filepath.Join(root, "200.jpeg"), true},
		{"300", "", false},
		{"missing", "", false},
		{"", "", false},
		{"../100", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.id)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMaterializerCopyIsIdempotent(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "images")
	a := filepath.Join(src, "a.jpg")
	b := filepath.Join(src, "b.png")
	writeFile(t, a, "aaaa")
	writeFile(t, b, "bb")

	m := NewMaterializer(out, nil, nil)
	stats, err := m.Copy(context.Background(), []string{a, b, filepath.Join(src, "gone.jpg")})
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if stats.Copied != 2 || stats.Missing != 1 || stats.Existing != 0 || stats.Bytes != 6 {
		t.Fatalf("unexpected first stats: %+v", stats)
	}

	dst := filepath.Join(out, "a.jpg")
	before, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	// Changing the source must not change the already-copied destination.
	writeFile(t, a, "changed")
	stats, err = m.Copy(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("second Copy: %v", err)
	}
	if stats.Copied != 0 || stats.Existing != 2 {
		t.Fatalf("unexpected second stats: %+v", stats)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "aaaa" {
		t.Fatalf("destination changed: %q (%v)", data, err)
	}
	after, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("destination was rewritten")
	}
}

func TestMaterializerHonoursCancellation(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "a.jpg")
	writeFile(t, a, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMaterializer(filepath.Join(t.TempDir(), "out"), nil, nil)
	if _, err := m.Copy(ctx, []string{a}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestCopyFilesKeepsRelativeNames(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "a.jpg")
	writeFile(t, a, "a")
	out := t.TempDir()

	m := NewMaterializer(out, nil, nil)
	stats, err := m.CopyFiles(context.Background(), []File{
		{Source: a, Name: "nested/a.jpg"},
		{Source: a, Name: "../escape.jpg"},
	})
	if err != nil {
		t.Fatalf("CopyFiles: %v", err)
	}
	if stats.Copied != 1 || stats.Missing != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(out, "nested", "a.jpg")); err != nil {
		t.Fatalf("nested copy missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(out), "escape.jpg")); !os.IsNotExist(err) {
		t.Fatalf("escaping name was written: %v", err)
	}
}
