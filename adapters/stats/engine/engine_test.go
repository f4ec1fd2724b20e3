package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labscope/domain/catalog"
	"labscope/internal/testkit"
)

func record(code, price, department string) catalog.Record {
	return catalog.Record{
		Code: code, Name: code, Price: price,
		Attrs: map[catalog.Dimension]string{catalog.DimDepartment: department},
	}
}

func TestAggregateSingleMatch(t *testing.T) {
	eng := NewStatsEngine(DefaultOptions())
	view := catalog.Collection{record("CBC01", "350", "Hematology")}

	agg := eng.Aggregate(view, catalog.DimDepartment)

	require.NotNil(t, agg)
	assert.Equal(t, 350.0, agg.Summary.Avg)
	assert.Equal(t, 350.0, agg.Summary.Min)
	assert.Equal(t, 350.0, agg.Summary.Max)
	assert.Equal(t, 1, agg.Summary.NumericCount)
	require.Len(t, agg.Histogram, 1)
	assert.Equal(t, 0.0, agg.Histogram[0].Lower)
	assert.Equal(t, 1, agg.Histogram[0].Count)
}

func TestAggregateEmptyViewIsNil(t *testing.T) {
	eng := NewStatsEngine(DefaultOptions())
	assert.Nil(t, eng.Aggregate(catalog.Collection{}, catalog.DimDepartment))
	assert.Nil(t, eng.Aggregate(nil, catalog.DimDepartment))
}

func TestAggregateAverageIsRounded(t *testing.T) {
	eng := NewStatsEngine(DefaultOptions())
	view := catalog.Collection{
		record("A", "100", "X"),
		record("B", "101", "X"),
	}

	agg := eng.Aggregate(view, catalog.DimDepartment)

	require.NotNil(t, agg)
	assert.Equal(t, 101.0, agg.Summary.Avg) // 100.5 rounds up
}

func TestAggregateExcludesMalformedAndNonPositivePrices(t *testing.T) {
	eng := NewStatsEngine(DefaultOptions())
	view := catalog.Collection{
		record("A", "400", "X"),
		record("B", "N/A", "X"),
		record("C", "", "X"),
		record("D", "-50", "X"),
		record("E", "0", "X"),
	}

	agg := eng.Aggregate(view, catalog.DimDepartment)

	require.NotNil(t, agg)
	assert.Equal(t, 1, agg.Summary.NumericCount)
	assert.Equal(t, 400.0, agg.Summary.Avg)
	// The malformed rows stay in the group count for display.
	require.Len(t, agg.Groups, 1)
	assert.Equal(t, 5, agg.Groups[0].Count)
	assert.Equal(t, 400.0, agg.Groups[0].Avg)
}

func TestAggregateAllMalformedYieldsZeroSummary(t *testing.T) {
	eng := NewStatsEngine(DefaultOptions())
	view := catalog.Collection{record("A", "free", "X"), record("B", "call us", "X")}

	agg := eng.Aggregate(view, catalog.DimDepartment)

	require.NotNil(t, agg)
	assert.Zero(t, agg.Summary.Avg)
	assert.Zero(t, agg.Summary.Min)
	assert.Zero(t, agg.Summary.Max)
	assert.Empty(t, agg.Histogram)
}

func TestGroupStatsOrderAndTruncation(t *testing.T) {
	eng := NewStatsEngine(Options{GroupLimit: 2, BucketWidth: 500})
	view := catalog.Collection{
		record("A", "100", "Small"),
		record("B", "200", "Big"),
		record("C", "300", "Big"),
		record("D", "400", "Big"),
		record("E", "500", "Mid"),
		record("F", "600", "Mid"),
	}

	agg := eng.Aggregate(view, catalog.DimDepartment)

	require.NotNil(t, agg)
	require.Len(t, agg.Groups, 2)
	assert.Equal(t, "Big", agg.Groups[0].Key)
	assert.Equal(t, 3, agg.Groups[0].Count)
	assert.Equal(t, 300.0, agg.Groups[0].Avg)
	assert.Equal(t, "Mid", agg.Groups[1].Key)
}

func TestGroupStatsTiesKeepFirstSeenOrder(t *testing.T) {
	eng := NewStatsEngine(DefaultOptions())
	view := catalog.Collection{
		record("A", "100", "Beta"),
		record("B", "200", "Alpha"),
		record("C", "300", "Beta"),
		record("D", "400", "Alpha"),
	}

	agg := eng.Aggregate(view, catalog.DimDepartment)

	require.NotNil(t, agg)
	require.Len(t, agg.Groups, 2)
	assert.Equal(t, "Beta", agg.Groups[0].Key) // first seen wins the tie
	assert.Equal(t, "Alpha", agg.Groups[1].Key)
}

func TestHistogramBucketsAscendingNonEmpty(t *testing.T) {
	eng := NewStatsEngine(Options{GroupLimit: 15, BucketWidth: 500})
	view := catalog.Collection{
		record("A", "350", "X"),
		record("B", "499", "X"),
		record("C", "500", "X"),
		record("D", "2750", "X"),
	}

	agg := eng.Aggregate(view, catalog.DimDepartment)

	require.NotNil(t, agg)
	require.Len(t, agg.Histogram, 3)
	assert.Equal(t, 0.0, agg.Histogram[0].Lower)
	assert.Equal(t, 2, agg.Histogram[0].Count)
	assert.Equal(t, 500.0, agg.Histogram[1].Lower)
	assert.Equal(t, 1, agg.Histogram[1].Count)
	assert.Equal(t, 2500.0, agg.Histogram[2].Lower)
	assert.Equal(t, 1, agg.Histogram[2].Count)
}

func TestHistogramPartitionsNumericRows(t *testing.T) {
	// The bucket counts must sum to the numeric-parseable positive prices,
	// across a larger generated catalog including malformed rows.
	gen := testkit.NewCatalogGenerator(testkit.DefaultCatalogConfig())
	view := gen.Generate()
	eng := NewStatsEngine(DefaultOptions())

	agg := eng.Aggregate(view, catalog.DimDepartment)
	require.NotNil(t, agg)

	total := 0
	for _, b := range agg.Histogram {
		total += b.Count
	}
	assert.Equal(t, agg.Summary.NumericCount, total)
	assert.Less(t, agg.Summary.NumericCount, len(view)) // some rows are malformed
}

func TestProfileNeedsThreeNumericPrices(t *testing.T) {
	eng := NewStatsEngine(DefaultOptions())

	assert.Nil(t, eng.Profile(catalog.Collection{record("A", "100", "X"), record("B", "200", "X")}))

	view := catalog.Collection{
		record("A", "100", "X"),
		record("B", "200", "X"),
		record("C", "300", "X"),
		record("D", "oops", "X"),
	}
	dist := eng.Profile(view)
	require.NotNil(t, dist)
	assert.Equal(t, 200.0, dist.Median)
	assert.InDelta(t, 100.0, dist.Q25, 100.0)
	assert.InDelta(t, 300.0, dist.Q75, 100.0)
}
