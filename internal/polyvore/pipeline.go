package polyvore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"fashionset/internal/assets"
	"fashionset/internal/category"
	"fashionset/internal/fsutil"
	"fashionset/internal/linking"
	"fashionset/internal/logging"
	"fashionset/internal/progress"
	"fashionset/internal/sampling"
)

// Output file names inside the output directory.
const (
	ItemsFile     = "items_subset.json"
	TrainFile     = "outfits_train_subset.json"
	ValFile       = "outfits_val_subset.json"
	ImagesDirName = "images"
)

// Options describes one extraction run. Paths are already resolved.
type Options struct {
	ItemMetadata    string
	CategoriesCSV   string
	ImagesDir       string
	OutfitFiles     []string
	OutputDir       string
	Outfits         int
	MinItems        int
	TrainRatio      float64
	Seed            uint64
	ImageExtensions []string
}

// Runner executes the extraction.
type Runner struct {
	opts     Options
	logger   *slog.Logger
	progress progress.Reporter
}

// NewRunner builds a runner. A nil reporter disables progress output.
func NewRunner(opts Options, logger *slog.Logger, reporter progress.Reporter) *Runner {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if opts.TrainRatio == 0 {
		opts.TrainRatio = sampling.DefaultTrainRatio
	}
	return &Runner{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "polyvore"),
		progress: reporter,
	}
}

type usableItem struct {
	coarse category.Coarse
	source string
}

// Run loads, links, samples, copies and writes. Nothing is written to the
// output directory until every input has been read.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	res := newResult(r.opts)

	lookup, err := category.LoadLookup(r.opts.CategoriesCSV)
	if err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(r.opts.ItemMetadata)
	if err != nil {
		return nil, err
	}
	logger.Info("inputs loaded",
		logging.Int("items", catalog.Len()),
		logging.Int("categories", len(lookup)),
	)

	usable := r.scanItems(catalog, category.NewClassifier(lookup), res)
	logger.Info("items scanned",
		logging.Int("usable", res.UsableItems),
		logging.Int("unclassified", res.UnclassifiedItems),
		logging.Int("without_image", res.ItemsWithoutImage),
	)

	var outfits []Outfit
	for _, path := range r.opts.OutfitFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := LoadOutfits(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("outfit file loaded", logging.Path(path), logging.Int("outfits", len(loaded)))
		outfits = append(outfits, loaded...)
	}
	res.OutfitsRead = len(outfits)

	linked, stats := linking.Link(outfits, func(id string) bool {
		_, ok := usable[id]
		return ok
	}, r.opts.MinItems)
	res.UsableOutfits = stats.Kept
	res.DroppedOutfits = stats.DroppedParents
	res.DroppedRefs = stats.DroppedRefs
	logger.Info("outfits linked",
		logging.Int("usable", stats.Kept),
		logging.Int("dropped", stats.DroppedParents),
		logging.Int("min_items", r.opts.MinItems),
	)

	sample := sampling.Sample(linked, r.opts.Outfits, r.opts.Seed)
	if sample.Shortfall() {
		msg := fmt.Sprintf("only %d outfits available; using all instead of requested %d", sample.Available, sample.Requested)
		res.warnings = append(res.warnings, msg)
		logging.WarnWithContext(logger, "outfit pool smaller than requested", "sample_shortfall",
			logging.Int("requested", sample.Requested),
			logging.Int("available", sample.Available),
			logging.String(logging.FieldErrorHint, "lower polyvore.outfits or add outfit files"),
			logging.String(logging.FieldImpact, "subset contains every usable outfit"),
		)
	}
	res.SampledOutfits = len(sample.Items)

	ids := linking.ChildSet(sample.Items)
	slices.Sort(ids)
	res.SubsetItems = len(ids)

	sources := make([]string, 0, len(ids))
	for _, id := range ids {
		sources = append(sources, usable[id].source)
	}
	materializer := assets.NewMaterializer(filepath.Join(r.opts.OutputDir, ImagesDirName), logger, r.progress)
	copyStats, err := materializer.Copy(ctx, sources)
	if err != nil {
		return nil, err
	}
	res.Copy = copyStats
	if copyStats.Missing > 0 {
		res.warnings = append(res.warnings, fmt.Sprintf("%d images vanished before they could be copied", copyStats.Missing))
	}

	items := make(map[string]map[string]any, len(ids))
	for _, id := range ids {
		it, _ := catalog.Get(id)
		u := usable[id]
		res.ByCoarse[string(u.coarse)]++
		items[id] = it.Export(map[string]any{
			"coarse_type":   string(u.coarse),
			"image_relpath": filepath.ToSlash(filepath.Join(ImagesDirName, filepath.Base(u.source))),
		})
	}

	train, val := sampling.Split(sample.Items, r.opts.TrainRatio)
	res.TrainOutfits = len(train)
	res.ValOutfits = len(val)

	if err := fsutil.WriteJSON(filepath.Join(r.opts.OutputDir, ItemsFile), items, true); err != nil {
		return nil, fmt.Errorf("write items: %w", err)
	}
	if err := fsutil.WriteJSON(filepath.Join(r.opts.OutputDir, TrainFile), records(train), true); err != nil {
		return nil, fmt.Errorf("write train outfits: %w", err)
	}
	if err := fsutil.WriteJSON(filepath.Join(r.opts.OutputDir, ValFile), records(val), true); err != nil {
		return nil, fmt.Errorf("write val outfits: %w", err)
	}

	logger.Info("polyvore subset written",
		logging.OutputDir(r.opts.OutputDir),
		logging.Int("train", res.TrainOutfits),
		logging.Int("val", res.ValOutfits),
		logging.Int("items", res.SubsetItems),
	)
	return res, nil
}

func (r *Runner) scanItems(catalog *Catalog, classifier *category.Classifier, res *Result) map[string]usableItem {
	resolver := assets.NewResolver(r.opts.ImagesDir, r.opts.ImageExtensions)
	usable := make(map[string]usableItem)
	for _, id := range catalog.IDs() {
		it, _ := catalog.Get(id)
		coarse, rule, ok := classifier.Classify(it)
		if !ok {
			res.UnclassifiedItems++
			continue
		}
		src, ok := resolver.Resolve(id)
		if !ok {
			res.ItemsWithoutImage++
			continue
		}
		res.ByRule[rule]++
		usable[id] = usableItem{coarse: coarse, source: src}
	}
	res.UsableItems = len(usable)
	return usable
}

func records(linked []linking.Linked[Outfit, string]) []Record {
	out := make([]Record, 0, len(linked))
	for _, l := range linked {
		out = append(out, Record{SetID: l.Parent.SetID, ItemIDs: l.ChildIDs})
	}
	return out
}
