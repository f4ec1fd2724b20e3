package catalog

import (
	"strconv"
	"strings"
)

// Resource identifies one remotely fetched collection
type Resource string

const (
	ResourceTests   Resource = "tests"
	ResourcePricing Resource = "pricing"
	ResourceCenters Resource = "centers"
	ResourceKPIs    Resource = "kpis"
)

// Dimension names a categorical attribute records can be filtered on
type Dimension string

const (
	DimDepartment Dimension = "department"
	DimCity       Dimension = "city"
	DimSpecimen   Dimension = "specimen"
	DimDisease    Dimension = "disease"
)

// Dimensions lists the filterable dimensions in their canonical order.
// The order is load-bearing for deterministic query encoding.
var Dimensions = []Dimension{DimDepartment, DimCity, DimSpecimen, DimDisease}

// Record is one catalog entry. Code is the identity, unique within a
// resource's collection. Price is kept as supplied by the source; a value
// that does not parse as a positive number is tolerated for display but
// excluded from numeric aggregation.
type Record struct {
	Code  string               `json:"code"`
	Name  string               `json:"name"`
	Price string               `json:"price"`
	Attrs map[Dimension]string `json:"attrs,omitempty"`
	// Extra carries display-only fields the engine never filters or
	// aggregates on (turnaround time, sample instructions, ...).
	Extra map[string]string `json:"extra,omitempty"`
}

// Attr returns the record's value for a categorical dimension
func (r Record) Attr(dim Dimension) string {
	if r.Attrs == nil {
		return ""
	}
	return r.Attrs[dim]
}

// PriceValue parses the price field. ok is false for missing, malformed
// or non-positive values.
func (r Record) PriceValue() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Price), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Collection is an ordered sequence of records as returned by one fetch.
// Source order is preserved through filtering.
type Collection []Record

// Codes returns the record codes in source order
func (c Collection) Codes() []string {
	codes := make([]string, len(c))
	for i, r := range c {
		codes[i] = r.Code
	}
	return codes
}

// FilterState holds the current query text and the selected value sets per
// dimension. Pure data; composition into a predicate lives in predicate.go.
// Selected values that no record of the current collection carries simply
// match nothing, which is tolerated.
type FilterState struct {
	Query    string                        `json:"query"`
	Selected map[Dimension]map[string]bool `json:"selected,omitempty"`
}

// NewFilterState creates an empty filter state
func NewFilterState() FilterState {
	return FilterState{Selected: make(map[Dimension]map[string]bool)}
}

// Clone returns an independent deep copy
func (f FilterState) Clone() FilterState {
	out := FilterState{Query: f.Query, Selected: make(map[Dimension]map[string]bool, len(f.Selected))}
	for dim, set := range f.Selected {
		cp := make(map[string]bool, len(set))
		for v := range set {
			cp[v] = true
		}
		out.Selected[dim] = cp
	}
	return out
}

// Toggle flips membership of value in the dimension's selected set
func (f *FilterState) Toggle(dim Dimension, value string) {
	if f.Selected == nil {
		f.Selected = make(map[Dimension]map[string]bool)
	}
	set := f.Selected[dim]
	if set == nil {
		set = make(map[string]bool)
		f.Selected[dim] = set
	}
	if set[value] {
		delete(set, value)
	} else {
		set[value] = true
	}
}

// IsSelected reports whether value is in the dimension's selected set
func (f FilterState) IsSelected(dim Dimension, value string) bool {
	return f.Selected != nil && f.Selected[dim][value]
}

// IsEmpty reports whether the filter imposes no constraint at all
func (f FilterState) IsEmpty() bool {
	if f.Query != "" {
		return false
	}
	for _, set := range f.Selected {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// PageState holds the pagination inputs. Page is 1-based; clamping against
// the current filtered count happens at slice time (see paginate.go).
type PageState struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Vocabulary is the ordered list of selectable values for one dimension
type Vocabulary struct {
	Dimension Dimension `json:"dimension"`
	Values    []string  `json:"values"`
}
