package deepfashion2

import (
	"fashionset/internal/report"
)

// PipelineName identifies this pipeline in logs and run history.
const PipelineName = "deepfashion2"

// SplitResult summarizes one split.
type SplitResult struct {
	Split            string             `json:"split"`
	Output           string             `json:"output,omitempty"`
	Skipped          bool               `json:"skipped"`
	AnnotationFiles  int                `json:"annotation_files"`
	Images           int                `json:"images"`
	Annotations      int                `json:"annotations"`
	MissingImages    int                `json:"missing_images"`
	UnreadableImages int                `json:"unreadable_images"`
	ItemsSeen        int                `json:"items_seen"`
	ItemsSkipped     map[SkipReason]int `json:"items_skipped,omitempty"`
	BBoxFallbacks    int                `json:"bbox_fallbacks"`
}

// Result summarizes a conversion run.
type Result struct {
	Output   string        `json:"output_dir"`
	Fallback string        `json:"segmentation_fallback"`
	Splits   []SplitResult `json:"splits"`

	warnings []string
}

func (r *Result) Pipeline() string   { return PipelineName }
func (r *Result) OutputDir() string  { return r.Output }
func (r *Result) Warnings() []string { return append([]string(nil), r.warnings...) }

// Split returns the result for name.
func (r *Result) Split(name string) (SplitResult, bool) {
	for _, s := range r.Splits {
		if s.Split == name {
			return s, true
		}
	}
	return SplitResult{}, false
}

// Counts lists per-split counters in split order.
func (r *Result) Counts() []report.Count {
	var counts []report.Count
	for _, s := range r.Splits {
		if s.Skipped {
			continue
		}
		prefix := s.Split + "_"
		label := s.Split + ": "
		counts = append(counts,
			report.N(prefix+"annotation_files", label+"annotation files", s.AnnotationFiles),
			report.N(prefix+"images", label+"images", s.Images),
			report.N(prefix+"annotations", label+"annotations", s.Annotations),
			report.N(prefix+"missing_images", label+"images not found", s.MissingImages+s.UnreadableImages),
		)
		for _, reason := range SkipReasons {
			if n := s.ItemsSkipped[reason]; n > 0 {
				counts = append(counts, report.N(prefix+"skipped_"+string(reason), label+"items skipped ("+string(reason)+")", n))
			}
		}
		if s.BBoxFallbacks > 0 {
			counts = append(counts, report.N(prefix+"bbox_fallbacks", label+"box-outline polygons", s.BBoxFallbacks))
		}
	}
	return counts
}
