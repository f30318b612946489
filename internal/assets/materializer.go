package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"fashionset/internal/fsutil"
	"fashionset/internal/logging"
	"fashionset/internal/progress"
)

// CopyStats summarizes one copy call.
type CopyStats struct {
	Requested int   `json:"requested"`
	Copied    int   `json:"copied"`
	Existing  int   `json:"existing"`
	Missing   int   `json:"missing"`
	Bytes     int64 `json:"bytes"`
}

// Materializer copies source files into Dir.
type Materializer struct {
	Dir      string
	logger   *slog.Logger
	progress progress.Reporter
}

// NewMaterializer builds a materializer writing into dir.
func NewMaterializer(dir string, logger *slog.Logger, reporter progress.Reporter) *Materializer {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Materializer{
		Dir:      dir,
		logger:   logging.NewComponentLogger(logger, "assets"),
		progress: reporter,
	}
}

// File is one copy request: Source lands at Dir/Name. Name may contain
// forward-slash subdirectories but must stay inside Dir.
type File struct {
	Source string
	Name   string
}

// Destination returns where src lands inside Dir when copied by base name.
func (m *Materializer) Destination(src string) string {
	return filepath.Join(m.Dir, filepath.Base(src))
}

// Copy copies sources into Dir under their base names.
func (m *Materializer) Copy(ctx context.Context, sources []string) (CopyStats, error) {
	files := make([]File, 0, len(sources))
	for _, src := range sources {
		files = append(files, File{Source: src, Name: filepath.Base(src)})
	}
	return m.CopyFiles(ctx, files)
}

// CopyFiles copies every file not already present at its destination.
// Existing destinations are left untouched, so a repeated run is a no-op.
// Missing sources and names escaping Dir are logged and skipped; any other
// I/O failure aborts.
func (m *Materializer) CopyFiles(ctx context.Context, files []File) (CopyStats, error) {
	stats := CopyStats{Requested: len(files)}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return stats, fmt.Errorf("create asset directory: %w", err)
	}

	logger := logging.WithContext(ctx, m.logger)
	m.progress.Start("copy images", len(files))
	defer m.progress.Finish()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		m.progress.Add(1)

		name := filepath.FromSlash(f.Name)
		if !filepath.IsLocal(name) {
			stats.Missing++
			logging.WarnWithContext(logger, "image name escapes output directory", "asset_rejected",
				logging.String("name", f.Name),
				logging.String(logging.FieldImpact, "image skipped"),
			)
			continue
		}
		dst := filepath.Join(m.Dir, name)
		if fsutil.Exists(dst) {
			stats.Existing++
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return stats, fmt.Errorf("create asset directory: %w", err)
		}
		n, err := fsutil.CopyFile(f.Source, dst)
		if errors.Is(err, fs.ErrNotExist) {
			stats.Missing++
			logging.WarnWithContext(logger, "image file not found", "asset_missing",
				logging.String("source", f.Source),
				logging.String(logging.FieldErrorHint, "check the images directory"),
				logging.String(logging.FieldImpact, "image skipped"),
			)
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("copy %s: %w", f.Source, err)
		}
		stats.Copied++
		stats.Bytes += n
	}

	logger.Debug("asset copy finished",
		logging.Int("copied", stats.Copied),
		logging.Int("existing", stats.Existing),
		logging.Int("missing", stats.Missing),
	)
	return stats, nil
}

func isRegular(path string) bool {
	return fsutil.IsFile(path)
}
