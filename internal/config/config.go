package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// Dir, when set, receives a fashionset.log copy of every log line.
	Dir string `toml:"dir"`
}

// History contains configuration for the run history ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Polyvore contains configuration for the outfit subset extraction.
type Polyvore struct {
	RootDir         string   `toml:"root_dir"`
	OutputDir       string   `toml:"output_dir"`
	ItemMetadata    string   `toml:"item_metadata"`
	CategoriesCSV   string   `toml:"categories_csv"`
	ImagesDir       string   `toml:"images_dir"`
	OutfitFiles     []string `toml:"outfit_files"`
	Outfits         int      `toml:"outfits"`
	MinItems        int      `toml:"min_items"`
	TrainRatio      float64  `toml:"train_ratio"`
	Seed            uint64   `toml:"seed"`
	ImageExtensions []string `toml:"image_extensions"`
}

// DeepFashion2 contains configuration for the per-image annotation conversion.
type DeepFashion2 struct {
	RootDir   string   `toml:"root_dir"`
	OutputDir string   `toml:"output_dir"`
	Splits    []string `toml:"splits"`
	// SegmentationFallback selects what happens to items without a valid
	// polygon: "drop" skips them, "bbox" substitutes the box outline.
	SegmentationFallback string   `toml:"segmentation_fallback"`
	ImageExtensions      []string `toml:"image_extensions"`
}

// COCOSubset contains configuration for sampling an existing COCO dataset.
type COCOSubset struct {
	COCOJSON  string `toml:"coco_json"`
	ImagesDir string `toml:"images_dir"`
	OutputDir string `toml:"output_dir"`
	Images    int    `toml:"images"`
	Seed      uint64 `toml:"seed"`
}

// Config encapsulates all configuration values for fashionset.
//
// Configuration sections by subsystem:
//   - Logging: log format, level, optional file output
//   - History: sqlite ledger of completed runs
//   - Polyvore: outfit subset extraction
//   - DeepFashion2: per-image annotations to merged COCO files
//   - COCOSubset: sampling of an already merged COCO file
type Config struct {
	Logging      Logging      `toml:"logging"`
	History      History      `toml:"history"`
	Polyvore     Polyvore     `toml:"polyvore"`
	DeepFashion2 DeepFashion2 `toml:"deepfashion2"`
	COCOSubset   COCOSubset   `toml:"coco_subset"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fashionset/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fashionset.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// PolyvoreOutputDir returns the configured output directory, or
// <root>/polyvore_subset_<outfits> when none is set.
func (c *Config) PolyvoreOutputDir() string {
	if c.Polyvore.OutputDir != "" {
		return c.Polyvore.OutputDir
	}
	if c.Polyvore.RootDir == "" {
		return ""
	}
	return filepath.Join(c.Polyvore.RootDir, fmt.Sprintf("polyvore_subset_%d", c.Polyvore.Outfits))
}

// PolyvoreOutfitPaths resolves outfit files relative to the Polyvore root.
func (c *Config) PolyvoreOutfitPaths() []string {
	paths := make([]string, 0, len(c.Polyvore.OutfitFiles))
	for _, name := range c.Polyvore.OutfitFiles {
		paths = append(paths, c.polyvorePath(name))
	}
	return paths
}

// PolyvoreItemMetadataPath resolves the item metadata file.
func (c *Config) PolyvoreItemMetadataPath() string {
	return c.polyvorePath(c.Polyvore.ItemMetadata)
}

// PolyvoreCategoriesPath resolves the category table file.
func (c *Config) PolyvoreCategoriesPath() string {
	return c.polyvorePath(c.Polyvore.CategoriesCSV)
}

// PolyvoreImagesPath resolves the item image directory.
func (c *Config) PolyvoreImagesPath() string {
	return c.polyvorePath(c.Polyvore.ImagesDir)
}

func (c *Config) polyvorePath(name string) string {
	if filepath.IsAbs(name) || c.Polyvore.RootDir == "" {
		return name
	}
	return filepath.Join(c.Polyvore.RootDir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
