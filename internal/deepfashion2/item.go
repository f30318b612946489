package deepfashion2

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// SkipReason says why an item was excluded.
type SkipReason string

const (
	SkipCategory     SkipReason = "category"
	SkipBBox         SkipReason = "bbox"
	SkipEmptyBox     SkipReason = "empty_box"
	SkipSegmentation SkipReason = "segmentation"
	SkipMalformed    SkipReason = "malformed"
)

// SkipReasons lists the reasons in reporting order.
var SkipReasons = []SkipReason{SkipCategory, SkipBBox, SkipEmptyBox, SkipSegmentation, SkipMalformed}

// Fallback policies for items without a usable polygon.
const (
	FallbackDrop = "drop"
	FallbackBBox = "bbox"
)

// Item is a validated clothing item.
type Item struct {
	CategoryID int
	// BBox is [x, y, width, height].
	BBox     [4]float64
	Polygons [][]float64
	// FromBBox is set when Polygons is the fallback box outline.
	FromBBox bool
}

// Area is width times height of the box.
func (it Item) Area() float64 { return it.BBox[2] * it.BBox[3] }

type rawItem struct {
	CategoryID   json.RawMessage `json:"category_id"`
	BoundingBox  json.RawMessage `json:"bounding_box"`
	Segmentation json.RawMessage `json:"segmentation"`
}

// ParseItem validates one item entry. The box in the source is
// [x1, y1, x2, y2].
func ParseItem(data json.RawMessage, fallback string) (Item, SkipReason, bool) {
	var raw rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return Item{}, SkipMalformed, false
	}

	cat, ok := parseCategoryID(raw.CategoryID)
	if !ok || !ValidCategory(cat) {
		return Item{}, SkipCategory, false
	}

	var box []float64
	if err := json.Unmarshal(raw.BoundingBox, &box); err != nil || len(box) != 4 {
		return Item{}, SkipBBox, false
	}
	x1, y1, x2, y2 := box[0], box[1], box[2], box[3]
	w := math.Max(0, x2-x1)
	h := math.Max(0, y2-y1)
	if w <= 0 || h <= 0 {
		return Item{}, SkipEmptyBox, false
	}

	it := Item{CategoryID: cat, BBox: [4]float64{x1, y1, w, h}}
	it.Polygons = ParseSegmentation(raw.Segmentation)
	if len(it.Polygons) == 0 {
		if fallback != FallbackBBox {
			return Item{}, SkipSegmentation, false
		}
		it.Polygons = [][]float64{{x1, y1, x2, y1, x2, y2, x1, y2}}
		it.FromBBox = true
	}
	return it, "", true
}

func parseCategoryID(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
	} else {
		text = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseSegmentation returns the usable polygons of a segmentation value. A
// flat number list is one polygon; a list of lists is several. A polygon
// needs an even number of coordinates and at least three points.
func ParseSegmentation(raw json.RawMessage) [][]float64 {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || len(elems) == 0 {
		return nil
	}

	var candidates []json.RawMessage
	if first := bytes.TrimSpace(elems[0]); len(first) > 0 && first[0] != '[' {
		candidates = []json.RawMessage{raw}
	} else {
		candidates = elems
	}

	var polygons [][]float64
	for _, c := range candidates {
		var poly []float64
		if err := json.Unmarshal(c, &poly); err != nil {
			continue
		}
		if len(poly) < 6 || len(poly)%2 != 0 {
			continue
		}
		polygons = append(polygons, poly)
	}
	return polygons
}

// itemKeys returns the keys starting with "item" ordered by numeric suffix;
// keys without a numeric suffix sort after, by name.
func itemKeys(entries map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		if strings.HasPrefix(k, "item") {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		na, errA := strconv.Atoi(strings.TrimPrefix(a, "item"))
		nb, errB := strconv.Atoi(strings.TrimPrefix(b, "item"))
		switch {
		case errA == nil && errB == nil && na != nb:
			if na < nb {
				return -1
			}
			return 1
		case errA == nil && errB != nil:
			return -1
		case errA != nil && errB == nil:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}
