package category

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Coarse is a coarse garment type.
type Coarse string

const (
	Top       Coarse = "top"
	Bottom    Coarse = "bottom"
	Outerwear Coarse = "outerwear"
	Dress     Coarse = "dress"
)

// CoarseTypes lists the coarse types in their canonical id order.
var CoarseTypes = []Coarse{Top, Bottom, Outerwear, Dress}

// ID returns the position of c in CoarseTypes, or -1.
func (c Coarse) ID() int {
	for i, t := range CoarseTypes {
		if t == c {
			return i
		}
	}
	return -1
}

// MainToCoarse maps dataset main categories onto coarse types.
var MainToCoarse = map[string]Coarse{
	"tops":      Top,
	"bottoms":   Bottom,
	"outerwear": Outerwear,
	"all-body":  Dress,
}

// Metadata field names read by the classifier.
const (
	FieldCategoryID       = "category_id"
	FieldSemanticCategory = "semantic_category"
	FieldMainCategory     = "main_category"
	FieldSubCategory      = "sub_category"
	FieldTitle            = "title"
	FieldDescription      = "description"
)

// Record gives total access to a record's metadata: missing or null fields
// read as "", numbers as their literal text.
type Record interface {
	Field(name string) string
}

// Rule is one step of the classification chain.
type Rule struct {
	Name  string
	Match func(Record) (Coarse, bool)
}

// KeywordSet ties a coarse type to the substrings that imply it.
type KeywordSet struct {
	Coarse   Coarse
	Keywords []string
}

// DefaultKeywords is the keyword precedence: earlier sets shadow later ones.
var DefaultKeywords = []KeywordSet{
	{Dress, []string{"dress", "jumpsuit", "romper"}},
	{Bottom, []string{"skirt", "shorts", "pants", "jeans", "trouser"}},
	{Outerwear, []string{"coat", "jacket", "blazer", "cardigan", "outerwear"}},
	{Top, []string{"shirt", "top", "tee", "t-shirt", "blouse", "sweater", "hoodie"}},
}

// Classifier evaluates Rules in order. It is not safe for concurrent use.
type Classifier struct {
	rules []Rule
	lower cases.Caser
}

// NewClassifier builds the standard chain: lookup main category, the
// record's own semantic and main category fields, then keyword sets.
func NewClassifier(lookup Lookup) *Classifier {
	rules := []Rule{
		LookupRule(lookup),
		FieldRule("semantic-category", FieldSemanticCategory),
		FieldRule("main-category", FieldMainCategory),
	}
	for _, set := range DefaultKeywords {
		rules = append(rules, KeywordRule(set))
	}
	return &Classifier{rules: rules, lower: newLower()}
}

// NewClassifierWithRules builds a classifier from an explicit chain.
func NewClassifierWithRules(rules ...Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...), lower: newLower()}
}

// Rules returns the chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the coarse type and the name of the rule that decided it.
func (c *Classifier) Classify(rec Record) (Coarse, string, bool) {
	rec = &textRecord{Record: rec, lower: &c.lower}
	for _, rule := range c.rules {
		if coarse, ok := rule.Match(rec); ok {
			return coarse, rule.Name, true
		}
	}
	return "", "", false
}

// LookupRule resolves the record's category code through lookup and maps the
// main category.
func LookupRule(lookup Lookup) Rule {
	return Rule{
		Name: "lookup-main-category",
		Match: func(rec Record) (Coarse, bool) {
			entry, ok := lookup[rec.Field(FieldCategoryID)]
			if !ok {
				return "", false
			}
			coarse, ok := MainToCoarse[entry.MainCategory]
			return coarse, ok
		},
	}
}

// FieldRule maps the raw value of field through MainToCoarse.
func FieldRule(name, field string) Rule {
	return Rule{
		Name: name,
		Match: func(rec Record) (Coarse, bool) {
			coarse, ok := MainToCoarse[rec.Field(field)]
			return coarse, ok
		},
	}
}

// KeywordRule matches when the lower-cased sub category, title or
// description contains any keyword of set.
func KeywordRule(set KeywordSet) Rule {
	lower := newLower()
	keywords := make([]string, len(set.Keywords))
	for i, k := range set.Keywords {
		keywords[i] = lower.String(k)
	}
	return Rule{
		Name: "keyword-" + string(set.Coarse),
		Match: func(rec Record) (Coarse, bool) {
			text := searchText(rec)
			for _, k := range keywords {
				if strings.Contains(text, k) {
					return set.Coarse, true
				}
			}
			return "", false
		},
	}
}

// SearchText is the lower-cased "sub_category title description" string
// that keyword rules search.
func SearchText(rec Record) string {
	lower := newLower()
	return joinSearchFields(rec, &lower)
}

func newLower() cases.Caser {
	return cases.Lower(language.Und)
}

func joinSearchFields(rec Record, lower *cases.Caser) string {
	return lower.String(strings.Join([]string{
		rec.Field(FieldSubCategory),
		rec.Field(FieldTitle),
		rec.Field(FieldDescription),
	}, " "))
}

// textRecord computes the search text of the wrapped record at most once
// per classification.
type textRecord struct {
	Record
	lower *cases.Caser
	text  string
	done  bool
}

func (r *textRecord) searchText() string {
	if !r.done {
		r.text = joinSearchFields(r.Record, r.lower)
		r.done = true
	}
	return r.text
}

func searchText(rec Record) string {
	if r, ok := rec.(*textRecord); ok {
		return r.searchText()
	}
	return SearchText(rec)
}
