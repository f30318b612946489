package deepfashion2

import "fashionset/internal/coco"

// Supercategory is shared by every DeepFashion2 category.
const Supercategory = "clothes"

var categoryNames = [...]string{
	1:  "short_sleeve_top",
	2:  "long_sleeve_top",
	3:  "short_sleeve_outwear",
	4:  "long_sleeve_outwear",
	5:  "vest",
	6:  "sling",
	7:  "shorts",
	8:  "trousers",
	9:  "skirt",
	10: "short_sleeve_dress",
	11: "long_sleeve_dress",
	12: "vest_dress",
	13: "sling_dress",
}

// ValidCategory reports whether id is one of the 13 categories.
func ValidCategory(id int) bool {
	return id >= 1 && id < len(categoryNames)
}

// CategoryName returns the name for id, or "".
func CategoryName(id int) string {
	if !ValidCategory(id) {
		return ""
	}
	return categoryNames[id]
}

// Categories returns the fixed category list in id order.
func Categories() []coco.Category {
	out := make([]coco.Category, 0, len(categoryNames)-1)
	for id := 1; id < len(categoryNames); id++ {
		out = append(out, coco.Category{ID: id, Name: categoryNames[id], Supercategory: Supercategory})
	}
	return out
}
