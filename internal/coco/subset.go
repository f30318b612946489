package coco

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fashionset/internal/assets"
	"fashionset/internal/linking"
	"fashionset/internal/logging"
	"fashionset/internal/progress"
	"fashionset/internal/report"
	"fashionset/internal/sampling"
)

// SubsetPipeline identifies the subset pipeline in logs and run history.
const SubsetPipeline = "subset"

// Output names inside the subset directory.
const (
	AnnotationsFile = "annotations.json"
	ImagesDirName   = "images"
)

// SubsetOptions describes one subset run.
type SubsetOptions struct {
	COCOJSON  string
	ImagesDir string
	OutputDir string
	Images    int
	Seed      uint64
}

// SubsetResult summarizes a subset run.
type SubsetResult struct {
	Output             string           `json:"output_dir"`
	Seed               uint64           `json:"seed"`
	Requested          int              `json:"requested"`
	TotalImages        int              `json:"total_images"`
	TotalAnnotations   int              `json:"total_annotations"`
	SampledImages      int              `json:"sampled_images"`
	SampledAnnotations int              `json:"sampled_annotations"`
	Copy               assets.CopyStats `json:"copy"`

	warnings []string
}

func (r *SubsetResult) Pipeline() string   { return SubsetPipeline }
func (r *SubsetResult) OutputDir() string  { return r.Output }
func (r *SubsetResult) Warnings() []string { return append([]string(nil), r.warnings...) }

// Counts lists the summary counters in display order.
func (r *SubsetResult) Counts() []report.Count {
	return []report.Count{
		report.N("total_images", "Images in source", r.TotalImages),
		report.N("total_annotations", "Annotations in source", r.TotalAnnotations),
		report.N("sampled_images", "Sampled images", r.SampledImages),
		report.N("sampled_annotations", "Sampled annotations", r.SampledAnnotations),
		report.N("images_copied", "Images copied", r.Copy.Copied),
		report.N("images_existing", "Images already present", r.Copy.Existing),
		report.N("images_missing", "Images missing", r.Copy.Missing),
		{Key: "bytes_copied", Label: "Bytes copied", Value: r.Copy.Bytes, Bytes: true},
	}
}

// Subsetter samples images from an annotation file and keeps only their
// annotations.
type Subsetter struct {
	opts     SubsetOptions
	logger   *slog.Logger
	progress progress.Reporter
}

// NewSubsetter builds a subsetter. A nil reporter disables progress output.
func NewSubsetter(opts SubsetOptions, logger *slog.Logger, reporter progress.Reporter) *Subsetter {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Subsetter{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "coco-subset"),
		progress: reporter,
	}
}

// Run loads, samples, filters, copies and writes.
func (s *Subsetter) Run(ctx context.Context) (*SubsetResult, error) {
	logger := logging.WithContext(ctx, s.logger)
	res := &SubsetResult{Output: s.opts.OutputDir, Seed: s.opts.Seed, Requested: s.opts.Images}

	ds, err := Load(s.opts.COCOJSON)
	if err != nil {
		return nil, err
	}
	res.TotalImages = len(ds.Images)
	res.TotalAnnotations = len(ds.Annotations)
	logger.Info("annotations loaded",
		logging.Path(s.opts.COCOJSON),
		logging.Int("images", res.TotalImages),
		logging.Int("annotations", res.TotalAnnotations),
	)

	sample := sampling.Sample(ds.Images, s.opts.Images, s.opts.Seed)
	if sample.Shortfall() {
		res.warnings = append(res.warnings, fmt.Sprintf("only %d images available; using all instead of requested %d", sample.Available, sample.Requested))
		logging.WarnWithContext(logger, "image pool smaller than requested", "sample_shortfall",
			logging.Int("requested", sample.Requested),
			logging.Int("available", sample.Available),
			logging.String(logging.FieldErrorHint, "lower coco_subset.images"),
			logging.String(logging.FieldImpact, "subset contains every image"),
		)
	}
	res.SampledImages = len(sample.Items)

	keep := make(map[string]struct{}, len(sample.Items))
	for _, img := range sample.Items {
		keep[img.ID] = struct{}{}
	}
	annotations := linking.FilterByParent(ds.Annotations, func(e Entry) string { return e.ImageID }, keep)
	res.SampledAnnotations = len(annotations)

	files := make([]assets.File, 0, len(sample.Items))
	for _, img := range sample.Items {
		files = append(files, assets.File{
			Source: filepath.Join(s.opts.ImagesDir, filepath.FromSlash(img.FileName)),
			Name:   img.FileName,
		})
	}
	materializer := assets.NewMaterializer(filepath.Join(s.opts.OutputDir, ImagesDirName), logger, s.progress)
	copyStats, err := materializer.CopyFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	res.Copy = copyStats
	if copyStats.Missing > 0 {
		res.warnings = append(res.warnings, fmt.Sprintf("%d sampled images were not found", copyStats.Missing))
	}

	out := RawDataset{Images: sample.Items, Annotations: annotations, Categories: ds.Categories}
	if err := Write(filepath.Join(s.opts.OutputDir, AnnotationsFile), out); err != nil {
		return nil, err
	}
	logger.Info("subset written",
		logging.OutputDir(s.opts.OutputDir),
		logging.Int("images", res.SampledImages),
		logging.Int("annotations", res.SampledAnnotations),
	)
	return res, nil
}
