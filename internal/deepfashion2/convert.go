package deepfashion2

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fashionset/internal/assets"
	"fashionset/internal/coco"
	"fashionset/internal/fsutil"
	"fashionset/internal/logging"
	"fashionset/internal/preflight"
	"fashionset/internal/progress"
)

// Directory names inside each split.
const (
	AnnosDir = "annos"
	ImageDir = "image"
)

// DefaultSplits are converted when none are configured.
var DefaultSplits = []string{"train", "val", "test"}

// Options describes one conversion run.
type Options struct {
	RootDir string
	// OutputDir receives <split>_coco.json; empty means RootDir.
	OutputDir            string
	Splits               []string
	SegmentationFallback string
	ImageExtensions      []string
}

// Converter turns DeepFashion2 splits into COCO files.
type Converter struct {
	opts     Options
	logger   *slog.Logger
	progress progress.Reporter
}

// NewConverter builds a converter. A nil reporter disables progress output.
func NewConverter(opts Options, logger *slog.Logger, reporter progress.Reporter) *Converter {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if len(opts.Splits) == 0 {
		opts.Splits = DefaultSplits
	}
	if opts.OutputDir == "" {
		opts.OutputDir = opts.RootDir
	}
	if opts.SegmentationFallback == "" {
		opts.SegmentationFallback = FallbackDrop
	}
	return &Converter{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "deepfashion2"),
		progress: reporter,
	}
}

// OutputPath returns where the file for split is written.
func (c *Converter) OutputPath(split string) string {
	return filepath.Join(c.opts.OutputDir, split+"_coco.json")
}

// Run converts every configured split. A split without a directory is
// skipped with a warning; a split directory lacking annos/ or image/ is fatal.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	logger := logging.WithContext(ctx, c.logger)
	res := &Result{Output: c.opts.OutputDir, Fallback: c.opts.SegmentationFallback}

	for _, split := range c.opts.Splits {
		splitRoot := filepath.Join(c.opts.RootDir, split)
		if !fsutil.IsDir(splitRoot) {
			res.Splits = append(res.Splits, SplitResult{Split: split, Skipped: true})
			res.warnings = append(res.warnings, fmt.Sprintf("split %q not found", split))
			logging.WarnWithContext(logger, "split directory not found", "split_missing",
				logging.Split(split),
				logging.Path(splitRoot),
				logging.String(logging.FieldErrorHint, "check deepfashion2.root_dir and deepfashion2.splits"),
				logging.String(logging.FieldImpact, "split skipped"),
			)
			continue
		}
		sr, err := c.convertSplit(ctx, split, splitRoot)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", split, err)
		}
		if sr.MissingImages > 0 {
			res.warnings = append(res.warnings, fmt.Sprintf("split %q: %d annotation files had no image", split, sr.MissingImages))
		}
		res.Splits = append(res.Splits, sr)
	}
	return res, nil
}

func (c *Converter) convertSplit(ctx context.Context, split, splitRoot string) (SplitResult, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.Split(split))
	sr := SplitResult{Split: split, Output: c.OutputPath(split), ItemsSkipped: map[SkipReason]int{}}

	annos := filepath.Join(splitRoot, AnnosDir)
	images := filepath.Join(splitRoot, ImageDir)
	if err := preflight.Err([]preflight.Result{
		preflight.CheckInput("annotations directory", annos, preflight.KindDir),
		preflight.CheckInput("images directory", images, preflight.KindDir),
	}); err != nil {
		return sr, err
	}

	files, err := annotationFiles(annos)
	if err != nil {
		return sr, err
	}
	sr.AnnotationFiles = len(files)
	logger.Info("converting split", logging.Int("annotation_files", len(files)))

	resolver := assets.NewResolver(images, c.opts.ImageExtensions)
	ds := coco.Dataset{
		Images:      []coco.Image{},
		Annotations: []coco.Annotation{},
		Categories:  Categories(),
	}
	imgID, annID := int64(1), int64(1)

	c.progress.Start("convert "+split, len(files))
	defer c.progress.Finish()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sr, err
		}
		c.progress.Add(1)

		entries, err := readAnnotation(path)
		if err != nil {
			return sr, err
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		imgPath, ok := resolver.Resolve(stem)
		if !ok {
			sr.MissingImages++
			logging.WarnWithContext(logger, "image file not found for annotation", "image_missing",
				logging.String("annotation", filepath.Base(path)),
				logging.String(logging.FieldImpact, "annotation file skipped"),
			)
			continue
		}
		width, height, err := imageSize(imgPath)
		if err != nil {
			sr.UnreadableImages++
			logging.WarnWithContext(logger, "image size could not be read", "image_unreadable",
				logging.String("image", imgPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "annotation file skipped"),
			)
			continue
		}

		ds.Images = append(ds.Images, coco.Image{
			ID:       imgID,
			FileName: filepath.Base(imgPath),
			Width:    width,
			Height:   height,
		})

		for _, key := range itemKeys(entries) {
			sr.ItemsSeen++
			item, reason, ok := ParseItem(entries[key], c.opts.SegmentationFallback)
			if !ok {
				sr.ItemsSkipped[reason]++
				continue
			}
			if item.FromBBox {
				sr.BBoxFallbacks++
			}
			ds.Annotations = append(ds.Annotations, coco.Annotation{
				ID:           annID,
				ImageID:      imgID,
				CategoryID:   item.CategoryID,
				BBox:         item.BBox,
				Segmentation: item.Polygons,
				Area:         item.Area(),
				IsCrowd:      0,
			})
			annID++
		}
		imgID++
	}

	sr.Images = len(ds.Images)
	sr.Annotations = len(ds.Annotations)
	if err := coco.Write(sr.Output, ds); err != nil {
		return sr, err
	}
	logger.Info("split converted",
		logging.String("output", sr.Output),
		logging.Int("images", sr.Images),
		logging.Int("annotations", sr.Annotations),
		logging.Int("categories", len(ds.Categories)),
	)
	return sr, nil
}

func annotationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ".json" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func readAnnotation(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotation: %w", err)
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse annotation %s: %w", path, err)
	}
	return entries, nil
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
