package engine

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"

	"labscope/domain/catalog"
	domstats "labscope/domain/stats"
)

// Options holds the display-driven aggregation caps
type Options struct {
	// GroupLimit caps the grouped statistics at the top-N groups by count
	GroupLimit int
	// BucketWidth is the fixed histogram bucket width in currency units
	BucketWidth float64
}

// DefaultOptions returns the caps used by the stock presentation layer
func DefaultOptions() Options {
	return Options{GroupLimit: 15, BucketWidth: 500}
}

// StatsEngine derives grouped statistics and histograms from filtered views
type StatsEngine struct {
	opts Options
}

// NewStatsEngine creates a new statistical engine
func NewStatsEngine(opts Options) *StatsEngine {
	if opts.GroupLimit <= 0 {
		opts.GroupLimit = DefaultOptions().GroupLimit
	}
	if opts.BucketWidth <= 0 {
		opts.BucketWidth = DefaultOptions().BucketWidth
	}
	return &StatsEngine{opts: opts}
}

// Aggregate computes the full statistics block for a filtered view,
// partitioning groups by the groupBy dimension. An empty view yields nil,
// signaling the empty state rather than a zero-filled result.
func (e *StatsEngine) Aggregate(view catalog.Collection, groupBy catalog.Dimension) *domstats.Aggregation {
	if len(view) == 0 {
		return nil
	}
	return &domstats.Aggregation{
		Summary:   e.summarize(view),
		Groups:    e.groupStats(view, groupBy),
		Histogram: e.histogram(view),
	}
}

// summarize computes avg/min/max over the numeric-parseable positive prices.
// Records with malformed prices stay in the view for display but do not
// participate here; zero numeric rows yields all-zero values.
func (e *StatsEngine) summarize(view catalog.Collection) domstats.Summary {
	prices := numericPrices(view)
	if len(prices) == 0 {
		return domstats.Summary{}
	}

	mean, err := mstats.Mean(prices)
	if err != nil {
		return domstats.Summary{}
	}
	min, err := mstats.Min(prices)
	if err != nil {
		return domstats.Summary{}
	}
	max, err := mstats.Max(prices)
	if err != nil {
		return domstats.Summary{}
	}

	return domstats.Summary{
		Avg:          math.Round(mean),
		Min:          min,
		Max:          max,
		NumericCount: len(prices),
	}
}

// groupStats partitions the view by one categorical dimension. Groups are
// ordered by descending count, ties by first-seen order of the group key,
// then truncated to the configured cap. Count includes every record of the
// group; the average is restricted to its numeric prices.
func (e *StatsEngine) groupStats(view catalog.Collection, groupBy catalog.Dimension) []domstats.GroupStat {
	type acc struct {
		count int
		sum   float64
		nums  int
	}
	order := make([]string, 0)
	groups := make(map[string]*acc)

	for _, r := range view {
		key := r.Attr(groupBy)
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
			order = append(order, key)
		}
		a.count++
		if v, ok := r.PriceValue(); ok {
			a.sum += v
			a.nums++
		}
	}

	// Stable sort keeps first-seen order for equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].count > groups[order[j]].count
	})
	if len(order) > e.opts.GroupLimit {
		order = order[:e.opts.GroupLimit]
	}

	out := make([]domstats.GroupStat, 0, len(order))
	for _, key := range order {
		a := groups[key]
		avg := 0.0
		if a.nums > 0 {
			avg = math.Round(a.sum / float64(a.nums))
		}
		out = append(out, domstats.GroupStat{Key: key, Count: a.count, Avg: avg})
	}
	return out
}

// histogram buckets the numeric prices into fixed-width ranges keyed by
// floor(price/width)*width, emitted in ascending key order with empty
// buckets omitted. The bucket counts always sum to the numeric row count.
func (e *StatsEngine) histogram(view catalog.Collection) []domstats.Bucket {
	width := e.opts.BucketWidth
	counts := make(map[float64]int)
	for _, r := range view {
		v, ok := r.PriceValue()
		if !ok {
			continue
		}
		counts[math.Floor(v/width)*width]++
	}

	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	out := make([]domstats.Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, domstats.Bucket{Lower: k, Count: counts[k]})
	}
	return out
}

// numericPrices extracts the parseable positive prices in view order
func numericPrices(view catalog.Collection) []float64 {
	prices := make([]float64, 0, len(view))
	for _, r := range view {
		if v, ok := r.PriceValue(); ok {
			prices = append(prices, v)
		}
	}
	return prices
}
