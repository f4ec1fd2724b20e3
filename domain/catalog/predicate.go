package catalog

import "strings"

// Predicate is a pure inclusion test over records
type Predicate func(Record) bool

// Compose builds the combined predicate for a filter state:
//   - the query matches case-insensitively against name and code; an empty
//     query matches everything
//   - each dimension with a non-empty selected set requires the record's
//     value to be a member (OR within a dimension, AND across dimensions)
//
// Identical filter state and record always yield the identical result.
func Compose(f FilterState) Predicate {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	// Snapshot the active constraints so later mutation of f cannot leak in.
	active := make(map[Dimension]map[string]bool)
	for dim, set := range f.Selected {
		if len(set) == 0 {
			continue
		}
		cp := make(map[string]bool, len(set))
		for v := range set {
			cp[v] = true
		}
		active[dim] = cp
	}

	return func(r Record) bool {
		if query != "" {
			if !strings.Contains(strings.ToLower(r.Name), query) &&
				!strings.Contains(strings.ToLower(r.Code), query) {
				return false
			}
		}
		for dim, set := range active {
			if !set[r.Attr(dim)] {
				return false
			}
		}
		return true
	}
}

// Filter applies the composed predicate to a collection, preserving source
// order. The result is always a fresh slice; the input is never mutated.
func Filter(c Collection, f FilterState) Collection {
	pred := Compose(f)
	out := make(Collection, 0, len(c))
	for _, r := range c {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
