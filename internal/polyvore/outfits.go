package polyvore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/antonholmquist/jason"
)

// Outfit is one grouping of item ids as read from an outfit file.
type Outfit struct {
	// SetID is the set_id value as it appeared in the source, nil when the
	// entry carried none.
	SetID   json.RawMessage
	ItemIDs []string
	// Source names the file the outfit came from.
	Source string
}

// ChildIDs returns the referenced item ids.
func (o Outfit) ChildIDs() []string { return o.ItemIDs }

// Record is the output form of a linked outfit.
type Record struct {
	SetID   json.RawMessage `json:"set_id"`
	ItemIDs []string        `json:"item_ids"`
}

// LoadOutfits reads one outfit file.
func LoadOutfits(path string) ([]Outfit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open outfits: %w", err)
	}
	defer file.Close()

	outfits, err := ReadOutfits(file)
	if err != nil {
		return nil, fmt.Errorf("outfits %s: %w", path, err)
	}
	for i := range outfits {
		outfits[i].Source = path
	}
	return outfits, nil
}

// ReadOutfits decodes a JSON array of outfits. Each entry is either an
// object with an optional set_id and an items list, or a bare list. Items
// are objects carrying item_id or bare ids. Entries of any other shape
// yield an outfit with no items.
func ReadOutfits(r io.Reader) ([]Outfit, error) {
	root, err := jason.NewValueFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	entries, err := root.Array()
	if err != nil {
		return nil, fmt.Errorf("expected a JSON array of outfits: %w", err)
	}
	outfits := make([]Outfit, 0, len(entries))
	for _, entry := range entries {
		outfits = append(outfits, decodeOutfit(entry))
	}
	return outfits, nil
}

func decodeOutfit(entry *jason.Value) Outfit {
	var out Outfit
	if list, err := entry.Array(); err == nil {
		out.ItemIDs = itemIDs(list)
		return out
	}
	obj, err := entry.Object()
	if err != nil {
		return out
	}
	if v, err := obj.GetValue("set_id"); err == nil {
		if _, ok := scalarText(v); ok {
			if raw, err := v.Marshal(); err == nil {
				out.SetID = raw
			}
		}
	}
	if list, err := obj.GetValueArray("items"); err == nil {
		out.ItemIDs = itemIDs(list)
	}
	return out
}

func itemIDs(list []*jason.Value) []string {
	ids := make([]string, 0, len(list))
	for _, v := range list {
		if obj, err := v.Object(); err == nil {
			ref, err := obj.GetValue("item_id")
			if err != nil {
				continue
			}
			v = ref
		}
		if id, ok := scalarText(v); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
