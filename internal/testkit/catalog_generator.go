package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"labscope/domain/catalog"
)

// CatalogGeneratorConfig configures the synthetic catalog generator
type CatalogGeneratorConfig struct {
	RecordCount   int     `json:"record_count"`
	Seed          int64   `json:"seed"`
	MalformedRate float64 `json:"malformed_rate"`
}

// DefaultCatalogConfig returns sensible defaults for catalog generation
func DefaultCatalogConfig() CatalogGeneratorConfig {
	return CatalogGeneratorConfig{
		RecordCount:   200,
		Seed:          42,
		MalformedRate: 0.05,
	}
}

// CatalogGenerator generates plausible diagnostic-test catalog data for
// tests and demos. Generation is deterministic for a given seed.
type CatalogGenerator struct {
	config CatalogGeneratorConfig
	rng    *rand.Rand
}

// NewCatalogGenerator creates a new catalog generator
func NewCatalogGenerator(config CatalogGeneratorConfig) *CatalogGenerator {
	return &CatalogGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	departments = []string{"Hematology", "Biochemistry", "Microbiology", "Immunology", "Histopathology", "Radiology"}
	cities      = []string{"Mumbai", "Delhi", "Bengaluru", "Chennai", "Hyderabad", "Pune"}
	specimens   = []string{"Blood", "Serum", "Urine", "Swab", "Tissue"}
	diseases    = []string{"Anemia", "Diabetes", "Thyroid", "Infection", "Liver", "Kidney"}
	testNames   = []string{
		"Complete Blood Count", "Liver Function Panel", "Thyroid Profile",
		"Lipid Profile", "Blood Glucose Fasting", "Urine Culture",
		"Vitamin D Total", "HbA1c", "Serum Creatinine", "CRP Quantitative",
	}
)

// Generate produces a synthetic record collection. A configurable fraction
// of prices is deliberately malformed so aggregation tolerance paths get
// exercised.
func (g *CatalogGenerator) Generate() catalog.Collection {
	out := make(catalog.Collection, 0, g.config.RecordCount)
	for i := 0; i < g.config.RecordCount; i++ {
		name := testNames[g.rng.Intn(len(testNames))]
		dept := departments[g.rng.Intn(len(departments))]

		price := strconv.Itoa(100 + g.rng.Intn(4900))
		if g.rng.Float64() < g.config.MalformedRate {
			price = "N/A"
		}

		out = append(out, catalog.Record{
			Code:  fmt.Sprintf("LAB%04d", i+1),
			Name:  fmt.Sprintf("%s %d", name, i+1),
			Price: price,
			Attrs: map[catalog.Dimension]string{
				catalog.DimDepartment: dept,
				catalog.DimCity:       cities[g.rng.Intn(len(cities))],
				catalog.DimSpecimen:   specimens[g.rng.Intn(len(specimens))],
				catalog.DimDisease:    diseases[g.rng.Intn(len(diseases))],
			},
			Extra: map[string]string{
				"turnaround_hours": strconv.Itoa(4 + g.rng.Intn(68)),
			},
		})
	}
	return out
}
