package polyvore

import (
	"fashionset/internal/assets"
	"fashionset/internal/category"
	"fashionset/internal/report"
)

// PipelineName identifies this pipeline in logs and run history.
const PipelineName = "polyvore"

// Result summarizes a run.
type Result struct {
	Output            string         `json:"output_dir"`
	Seed              uint64         `json:"seed"`
	Requested         int            `json:"requested"`
	UsableItems       int            `json:"usable_items"`
	UnclassifiedItems int            `json:"unclassified_items"`
	ItemsWithoutImage int            `json:"items_without_image"`
	OutfitsRead       int            `json:"outfits_read"`
	UsableOutfits     int            `json:"usable_outfits"`
	DroppedOutfits    int            `json:"dropped_outfits"`
	DroppedRefs       int            `json:"dropped_refs"`
	SampledOutfits    int            `json:"sampled_outfits"`
	TrainOutfits      int            `json:"train_outfits"`
	ValOutfits        int            `json:"val_outfits"`
	SubsetItems       int            `json:"subset_items"`
	ByCoarse          map[string]int `json:"by_coarse_type"`
	ByRule            map[string]int `json:"by_rule"`

	Copy assets.CopyStats `json:"copy"`

	warnings []string
}

func newResult(opts Options) *Result {
	return &Result{
		Output:    opts.OutputDir,
		Seed:      opts.Seed,
		Requested: opts.Outfits,
		ByCoarse:  make(map[string]int),
		ByRule:    make(map[string]int),
	}
}

func (r *Result) Pipeline() string   { return PipelineName }
func (r *Result) OutputDir() string  { return r.Output }
func (r *Result) Warnings() []string { return append([]string(nil), r.warnings...) }

// Counts lists the summary counters in display order.
func (r *Result) Counts() []report.Count {
	counts := []report.Count{
		report.N("usable_items", "Usable items", r.UsableItems),
		report.N("unclassified_items", "Unclassified items", r.UnclassifiedItems),
		report.N("items_without_image", "Items without image", r.ItemsWithoutImage),
		report.N("outfits_read", "Outfits read", r.OutfitsRead),
		report.N("usable_outfits", "Usable outfits", r.UsableOutfits),
		report.N("sampled_outfits", "Sampled outfits", r.SampledOutfits),
		report.N("train_outfits", "Train outfits", r.TrainOutfits),
		report.N("val_outfits", "Val outfits", r.ValOutfits),
		report.N("subset_items", "Subset items", r.SubsetItems),
	}
	for _, c := range category.CoarseTypes {
		counts = append(counts, report.N("coarse_"+string(c), "Items: "+string(c), r.ByCoarse[string(c)]))
	}
	counts = append(counts,
		report.N("images_copied", "Images copied", r.Copy.Copied),
		report.N("images_existing", "Images already present", r.Copy.Existing),
		report.N("images_missing", "Images missing", r.Copy.Missing),
		report.Count{Key: "bytes_copied", Label: "Bytes copied", Value: r.Copy.Bytes, Bytes: true},
	)
	return counts
}
