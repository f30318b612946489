package config

import (
	"fmt"
	"strings"
)

// Normalize trims string fields, expands paths, and restores defaults for
// empty values. Load calls it; commands call it again after applying flags.
func (c *Config) Normalize() error {
	c.normalizeLogging()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if err := c.normalizePolyvore(); err != nil {
		return err
	}
	if err := c.normalizeDeepFashion2(); err != nil {
		return err
	}
	return c.normalizeCOCOSubset()
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if dir, err := expandPath(strings.TrimSpace(c.Logging.Dir)); err == nil {
		c.Logging.Dir = dir
	}
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePolyvore() error {
	var err error
	p := &c.Polyvore
	if p.RootDir, err = expandPath(strings.TrimSpace(p.RootDir)); err != nil {
		return fmt.Errorf("polyvore.root_dir: %w", err)
	}
	if p.OutputDir, err = expandPath(strings.TrimSpace(p.OutputDir)); err != nil {
		return fmt.Errorf("polyvore.output_dir: %w", err)
	}
	p.ItemMetadata = defaultString(p.ItemMetadata, defaultPolyvoreItemMetadata)
	p.CategoriesCSV = defaultString(p.CategoriesCSV, defaultPolyvoreCategoriesCSV)
	p.ImagesDir = defaultString(p.ImagesDir, defaultPolyvoreImagesDir)
	p.OutfitFiles = normalizeList(p.OutfitFiles, false)
	if len(p.OutfitFiles) == 0 {
		p.OutfitFiles = defaultOutfitFiles()
	}
	p.ImageExtensions = normalizeExtensions(p.ImageExtensions)
	if p.TrainRatio == 0 {
		p.TrainRatio = defaultTrainRatio
	}
	return nil
}

func (c *Config) normalizeDeepFashion2() error {
	var err error
	d := &c.DeepFashion2
	if d.RootDir, err = expandPath(strings.TrimSpace(d.RootDir)); err != nil {
		return fmt.Errorf("deepfashion2.root_dir: %w", err)
	}
	if d.OutputDir, err = expandPath(strings.TrimSpace(d.OutputDir)); err != nil {
		return fmt.Errorf("deepfashion2.output_dir: %w", err)
	}
	d.Splits = normalizeList(d.Splits, false)
	if len(d.Splits) == 0 {
		d.Splits = defaultSplits()
	}
	d.SegmentationFallback = strings.ToLower(strings.TrimSpace(d.SegmentationFallback))
	if d.SegmentationFallback == "" {
		d.SegmentationFallback = defaultSegmentationFallback
	}
	d.ImageExtensions = normalizeExtensions(d.ImageExtensions)
	return nil
}

func (c *Config) normalizeCOCOSubset() error {
	var err error
	s := &c.COCOSubset
	if s.COCOJSON, err = expandPath(strings.TrimSpace(s.COCOJSON)); err != nil {
		return fmt.Errorf("coco_subset.coco_json: %w", err)
	}
	if s.ImagesDir, err = expandPath(strings.TrimSpace(s.ImagesDir)); err != nil {
		return fmt.Errorf("coco_subset.images_dir: %w", err)
	}
	if s.OutputDir, err = expandPath(strings.TrimSpace(s.OutputDir)); err != nil {
		return fmt.Errorf("coco_subset.output_dir: %w", err)
	}
	return nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func normalizeList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if lower {
			normalized = strings.ToLower(normalized)
		}
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func normalizeExtensions(values []string) []string {
	exts := normalizeList(values, true)
	if len(exts) == 0 {
		return defaultImageExtensions()
	}
	for i, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			exts[i] = "." + ext
		}
	}
	return exts
}
