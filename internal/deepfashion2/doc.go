// Package deepfashion2 merges the per-image DeepFashion2 annotation files of
// each split into one COCO-style file per split.
//
// Items are validated one by one: an unknown category, a malformed or empty
// bounding box, or a segmentation without any usable polygon excludes the
// item. Under the bbox fallback policy the last case keeps the item with
// its box outline as the polygon. Images whose file cannot be found are
// skipped with a warning.
package deepfashion2
