package coco

import (
	"fmt"

	"fashionset/internal/fsutil"
)

// Image is one entry of the images list.
type Image struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Annotation is one region instance. BBox is [x, y, width, height].
type Annotation struct {
	ID           int64       `json:"id"`
	ImageID      int64       `json:"image_id"`
	CategoryID   int         `json:"category_id"`
	BBox         [4]float64  `json:"bbox"`
	Segmentation [][]float64 `json:"segmentation"`
	Area         float64     `json:"area"`
	IsCrowd      int         `json:"iscrowd"`
}

// Category describes one label.
type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

// Dataset is a complete annotation file.
type Dataset struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// Write stores v as compact JSON at path, replacing any existing file only
// once the new content is complete.
func Write(path string, v any) error {
	if err := fsutil.WriteJSON(path, v, false); err != nil {
		return fmt.Errorf("write annotations %s: %w", path, err)
	}
	return nil
}
