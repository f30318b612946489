package polyvore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/antonholmquist/jason"
)

// Item is one metadata record. Fields vary between records, so all reads go
// through Field.
type Item struct {
	ID  string
	obj *jason.Object
}

// Field returns the text of a scalar field. Missing, null and structured
// values read as "", numbers as their literal JSON text.
func (it *Item) Field(name string) string {
	if it == nil || it.obj == nil {
		return ""
	}
	v, err := it.obj.GetValue(name)
	if err != nil {
		return ""
	}
	text, _ := scalarText(v)
	return text
}

// Export returns the record as a plain map with extra fields set on top.
// Numbers keep their source text.
func (it *Item) Export(extra map[string]any) map[string]any {
	out := make(map[string]any)
	if it != nil && it.obj != nil {
		if data, err := it.obj.Marshal(); err == nil {
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.UseNumber()
			_ = dec.Decode(&out)
		}
	}
	maps.Copy(out, extra)
	return out
}

// Catalog is the item metadata keyed by item id.
type Catalog struct {
	items map[string]*Item
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Get returns the item with id.
func (c *Catalog) Get(id string) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// IDs returns all item ids in sorted order.
func (c *Catalog) IDs() []string {
	return slices.Sorted(maps.Keys(c.items))
}

// LoadCatalog reads an item metadata file: a JSON object mapping item id to
// an object of metadata fields. Entries that are not objects are ignored.
func LoadCatalog(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open item metadata: %w", err)
	}
	defer file.Close()

	root, err := jason.NewObjectFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("parse item metadata %s: %w", path, err)
	}
	catalog := &Catalog{items: make(map[string]*Item)}
	for id, value := range root.Map() {
		obj, err := value.Object()
		if err != nil {
			continue
		}
		catalog.items[id] = &Item{ID: id, obj: obj}
	}
	return catalog, nil
}

func scalarText(v *jason.Value) (string, bool) {
	if v == nil {
		return "", false
	}
	if s, err := v.String(); err == nil {
		return s, true
	}
	if n, err := v.Number(); err == nil {
		return n.String(), true
	}
	if b, err := v.Boolean(); err == nil {
		return strconv.FormatBool(b), true
	}
	return "", false
}
