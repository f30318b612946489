package coco

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
)

// Entry is an image or annotation object kept verbatim. Key fields are
// extracted for linking; ids compare by their canonical text, so 1 and 1.0
// are the same id while "1" is not.
type Entry struct {
	ID       string
	ImageID  string
	FileName string
	raw      json.RawMessage
}

type entryKeys struct {
	ID       json.RawMessage `json:"id"`
	ImageID  json.RawMessage `json:"image_id"`
	FileName string          `json:"file_name"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var keys entryKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	e.ID = canonicalID(keys.ID)
	e.ImageID = canonicalID(keys.ImageID)
	e.FileName = keys.FileName
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// canonicalID renders integral numbers without fraction or exponent. Any
// other value keeps its JSON text.
func canonicalID(raw json.RawMessage) string {
	text := string(bytes.TrimSpace(raw))
	if text == "" || (text[0] != '-' && (text[0] < '0' || text[0] > '9')) {
		return text
	}
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return text
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= 1<<63 {
		return text
	}
	return strconv.FormatInt(int64(f), 10)
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e.raw) == 0 {
		return []byte("{}"), nil
	}
	return e.raw, nil
}

// RawDataset is an annotation file whose records are kept verbatim.
type RawDataset struct {
	Images      []Entry         `json:"images"`
	Annotations []Entry         `json:"annotations"`
	Categories  json.RawMessage `json:"categories"`
}

// Load reads an annotation file. Missing lists read as empty.
func Load(path string) (*RawDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	var ds RawDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse annotations %s: %w", path, err)
	}
	ds.normalize()
	return &ds, nil
}

func (ds *RawDataset) normalize() {
	if ds.Images == nil {
		ds.Images = []Entry{}
	}
	if ds.Annotations == nil {
		ds.Annotations = []Entry{}
	}
	if len(bytes.TrimSpace(ds.Categories)) == 0 || bytes.Equal(bytes.TrimSpace(ds.Categories), []byte("null")) {
		ds.Categories = json.RawMessage("[]")
	}
}
