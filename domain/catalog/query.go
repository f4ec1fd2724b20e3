package catalog

import (
	"net/url"
	"sort"
	"strconv"
)

// QueryParams serializes a filter state plus an offset/limit window into the
// wire query a data source understands: free text as "q", pagination as
// "offset"/"limit", and at most ONE value per dimension.
//
// The single-value restriction is a deliberate asymmetry: sources only
// support one value per dimension server-side, while the client-side
// predicate accepts full sets (OR within a dimension). When several values
// are selected the lexicographically smallest is sent, so encoding stays
// deterministic, and the client predicate narrows the result after fetch.
func (f FilterState) QueryParams(offset, limit int) url.Values {
	params := url.Values{}
	if f.Query != "" {
		params.Set("q", f.Query)
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	for _, dim := range Dimensions {
		set := f.Selected[dim]
		if len(set) == 0 {
			continue
		}
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		params.Set(string(dim), values[0])
	}
	return params
}
