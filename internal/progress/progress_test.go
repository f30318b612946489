package progress

import (
	"bytes"
	"strings"
	"testing"

	"fashionset/internal/logging"
)

func TestNewFallsBackToLogReporterForBuffers(t *testing.T) {
	var buf bytes.Buffer
	if _, ok := New(&buf, nil).(*LogReporter); !ok {
		t.Fatal("expected log reporter for non-terminal writer")
	}
	if IsTerminal(&buf) {
		t.Fatal("buffer is not a terminal")
	}
}

func TestLogReporterSamplesBuckets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New logger: %v", err)
	}

	r := NewLogReporter(logger)
	r.Start("copy images", 100)
	for i := 0; i < 100; i++ {
		r.Add(1)
	}
	r.Finish()

	lines := strings.Count(buf.String(), "progress")
	// 0%, then one line per 10% bucket through 100%.
	if lines != 11 {
		t.Fatalf("expected 11 progress lines, got %d:\n%s", lines, buf.String())
	}
	if !strings.Contains(buf.String(), "done=100 total=100") {
		t.Fatalf("missing completion line:\n%s", buf.String())
	}
}

func TestNopReporter(t *testing.T) {
	var r Reporter = Nop{}
	r.Start("x", 3)
	r.Add(3)
	r.Finish()
}
