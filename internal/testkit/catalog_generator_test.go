package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	cfg := DefaultCatalogConfig()

	first := NewCatalogGenerator(cfg).Generate()
	second := NewCatalogGenerator(cfg).Generate()

	require.Len(t, first, cfg.RecordCount)
	assert.Equal(t, first, second)

	cfg.Seed = 7
	assert.NotEqual(t, first, NewCatalogGenerator(cfg).Generate())
}

func TestGenerateProducesUniqueCodesAndSomeMalformedPrices(t *testing.T) {
	coll := NewCatalogGenerator(DefaultCatalogConfig()).Generate()

	seen := make(map[string]bool)
	malformed := 0
	for _, r := range coll {
		assert.False(t, seen[r.Code], "duplicate code %s", r.Code)
		seen[r.Code] = true
		if _, ok := r.PriceValue(); !ok {
			malformed++
		}
		assert.NotEmpty(t, r.Attr("department"))
	}
	assert.Greater(t, malformed, 0)
	assert.Less(t, malformed, len(coll)/2)
}
