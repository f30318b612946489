package testsupport

import (
	"path/filepath"
	"testing"

	"fashionset/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test.
// Dataset roots live under <base>/polyvore and <base>/deepfashion2, the
// history database under <base>/history.db.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Level = "debug"
	cfgVal.History.Path = filepath.Join(base, "history.db")
	cfgVal.Polyvore.RootDir = filepath.Join(base, "polyvore")
	cfgVal.DeepFashion2.RootDir = filepath.Join(base, "deepfashion2")
	cfgVal.COCOSubset.OutputDir = filepath.Join(base, "coco_subset")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// BaseDir returns the temp root NewConfig used for cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.History.Path)
}

// WithOutfits overrides the Polyvore sample size.
func WithOutfits(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Polyvore.Outfits = n
	}
}

// WithHistoryDisabled turns off the run history ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithSegmentationFallback sets the DeepFashion2 segmentation policy.
func WithSegmentationFallback(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DeepFashion2.SegmentationFallback = policy
	}
}

// WithCOCOSubset points the subset pipeline at an existing COCO file.
func WithCOCOSubset(cocoJSON, imagesDir string, images int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.COCOSubset.COCOJSON = cocoJSON
		b.cfg.COCOSubset.ImagesDir = imagesDir
		b.cfg.COCOSubset.Images = images
	}
}
