package engine

import (
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"labscope/domain/catalog"
	domstats "labscope/domain/stats"
)

// Profile describes the shape of the price distribution of a filtered view.
// It needs at least three numeric prices to say anything useful; below that
// it returns nil, the same empty-state signal Aggregate uses.
func (e *StatsEngine) Profile(view catalog.Collection) *domstats.Distribution {
	prices := numericPrices(view)
	if len(prices) < 3 {
		return nil
	}

	median, err := mstats.Median(prices)
	if err != nil {
		return nil
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	return &domstats.Distribution{
		Median:   median,
		StdDev:   stat.StdDev(prices, nil),
		Q25:      stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Q75:      stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Skewness: stat.Skew(prices, nil),
	}
}
