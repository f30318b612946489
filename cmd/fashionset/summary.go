package main

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"fashionset/internal/report"
)

func renderSummary(runID string, summary report.Summary, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString("Run:      " + runID + "\n")
	b.WriteString("Pipeline: " + summary.Pipeline() + "\n")
	b.WriteString("Output:   " + summary.OutputDir() + "\n")
	b.WriteString("Elapsed:  " + elapsed.Round(time.Millisecond).String() + "\n")

	rows := make([][]string, 0)
	for _, c := range summary.Counts() {
		rows = append(rows, []string{c.Label, formatCount(c)})
	}
	if len(rows) > 0 {
		b.WriteString(renderTable(countColumns, rows))
		b.WriteString("\n")
	}
	for _, w := range summary.Warnings() {
		b.WriteString("Warning: " + w + "\n")
	}
	return b.String()
}

func formatCount(c report.Count) string {
	if c.Bytes {
		return humanize.IBytes(uint64(max(c.Value, 0)))
	}
	return humanize.Comma(c.Value)
}

// printJSON writes v as indented JSON. Paths and warnings are printed as-is,
// without HTML escaping.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
