package category

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry describes one raw category code.
type Entry struct {
	SubCategory  string
	MainCategory string
}

// Lookup maps a raw category code to its descriptor.
type Lookup map[string]Entry

// Required header columns of the category table.
const (
	ColumnCategoryID   = "category_id"
	ColumnSubCategory  = "sub_category"
	ColumnMainCategory = "main_category"
)

// LoadLookup reads a category table from path.
func LoadLookup(path string) (Lookup, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open category table: %w", err)
	}
	defer file.Close()

	lookup, err := ReadLookup(file)
	if err != nil {
		return nil, fmt.Errorf("category table %s: %w", path, err)
	}
	return lookup, nil
}

// ReadLookup parses a CSV category table with a header row naming
// category_id, sub_category and main_category (in any order; extra columns
// are ignored).
func ReadLookup(r io.Reader) (Lookup, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty table")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	for _, required := range []string{ColumnCategoryID, ColumnSubCategory, ColumnMainCategory} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	lookup := make(Lookup)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		field := func(name string) string {
			i := index[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		id := field(ColumnCategoryID)
		if id == "" {
			return nil, fmt.Errorf("row %d: empty %s", line, ColumnCategoryID)
		}
		lookup[id] = Entry{
			SubCategory:  field(ColumnSubCategory),
			MainCategory: field(ColumnMainCategory),
		}
	}
	return lookup, nil
}
