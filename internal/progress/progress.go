// Package progress reports the advance of long linear phases (asset copies,
// per-file annotation parsing). Terminals get a progress bar; anything else
// gets sampled log lines.
package progress

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"fashionset/internal/logging"
)

// Reporter tracks one phase at a time.
type Reporter interface {
	// Start begins a phase of total steps.
	Start(phase string, total int)
	// Add advances the current phase by n steps.
	Add(n int)
	// Finish closes the current phase.
	Finish()
}

// New picks a bar when w is a terminal and a log-based reporter otherwise.
func New(w io.Writer, logger *slog.Logger) Reporter {
	if IsTerminal(w) {
		return &barReporter{w: w}
	}
	return NewLogReporter(logger)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(string, int) {}
func (Nop) Add(int)           {}
func (Nop) Finish()           {}

type barReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (r *barReporter) Start(phase string, total int) {
	r.Finish()
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(phase),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Add(n int) {
	if r.bar != nil {
		_ = r.bar.Add(n)
	}
}

func (r *barReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// LogReporter emits an INFO line each time a phase crosses a 10% bucket.
type LogReporter struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	phase   string
	total   int
	done    int
}

// NewLogReporter builds a reporter that logs through logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogReporter{logger: logger, sampler: logging.NewProgressSampler(10)}
}

func (r *LogReporter) Start(phase string, total int) {
	r.phase = phase
	r.total = total
	r.done = 0
	r.sampler.Reset()
	r.emit()
}

func (r *LogReporter) Add(n int) {
	r.done += n
	r.emit()
}

func (r *LogReporter) Finish() {
	r.phase = ""
	r.total = 0
	r.done = 0
}

func (r *LogReporter) emit() {
	percent := -1.0
	if r.total > 0 {
		percent = float64(r.done) * 100 / float64(r.total)
	}
	if !r.sampler.ShouldLog(percent, r.phase) {
		return
	}
	r.logger.Info("progress",
		logging.String("phase", r.phase),
		logging.Int("done", r.done),
		logging.Int("total", r.total),
	)
}
