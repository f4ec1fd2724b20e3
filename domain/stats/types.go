package stats

// Summary is the numeric price summary of a filtered view. Counts only
// records whose price parses as a positive number; when none do, all three
// values are zero.
type Summary struct {
	Avg          float64 `json:"avg"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	NumericCount int     `json:"numeric_count"`
}

// GroupStat is one group of the partition by a categorical dimension
type GroupStat struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
}

// Bucket is one fixed-width histogram range. Lower is the inclusive lower
// bound (floor(price/width)*width); only non-empty buckets are emitted.
type Bucket struct {
	Lower float64 `json:"bucket"`
	Count int     `json:"count"`
}

// Aggregation is the full derived statistics block for a filtered view.
// A nil *Aggregation signals an empty view (empty state, not an error).
type Aggregation struct {
	Summary   Summary     `json:"summary"`
	Groups    []GroupStat `json:"groups"`
	Histogram []Bucket    `json:"histogram"`
}

// Distribution describes the shape of the price distribution of a view,
// over the numeric-parseable prices only.
type Distribution struct {
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
}
