package config

const (
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultHistoryEnabled = true
	defaultHistoryPath    = "~/.local/share/fashionset/history.db"

	defaultPolyvoreItemMetadata  = "polyvore_item_metadata.json"
	defaultPolyvoreCategoriesCSV = "categories.csv"
	defaultPolyvoreImagesDir     = "images"
	defaultPolyvoreOutfits       = 5000
	defaultPolyvoreMinItems      = 2
	defaultTrainRatio            = 0.9
	defaultSeed                  = 42

	defaultSegmentationFallback = "drop"

	defaultCOCOSubsetImages = 500
)

// SegmentationFallback policies.
const (
	FallbackDrop = "drop"
	FallbackBBox = "bbox"
)

func defaultImageExtensions() []string {
	return []string{".jpg", ".png", ".jpeg"}
}

func defaultOutfitFiles() []string {
	return []string{
		"disjoint/train.json",
		"disjoint/valid.json",
		"disjoint/test.json",
	}
}

func defaultSplits() []string {
	return []string{"train", "val", "test"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
			Path:    defaultHistoryPath,
		},
		Polyvore: Polyvore{
			ItemMetadata:    defaultPolyvoreItemMetadata,
			CategoriesCSV:   defaultPolyvoreCategoriesCSV,
			ImagesDir:       defaultPolyvoreImagesDir,
			OutfitFiles:     defaultOutfitFiles(),
			Outfits:         defaultPolyvoreOutfits,
			MinItems:        defaultPolyvoreMinItems,
			TrainRatio:      defaultTrainRatio,
			Seed:            defaultSeed,
			ImageExtensions: defaultImageExtensions(),
		},
		DeepFashion2: DeepFashion2{
			Splits:               defaultSplits(),
			SegmentationFallback: defaultSegmentationFallback,
			ImageExtensions:      defaultImageExtensions(),
		},
		COCOSubset: COCOSubset{
			Images: defaultCOCOSubsetImages,
			Seed:   defaultSeed,
		},
	}
}
