package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"labscope/domain/catalog"
	"labscope/domain/core"
	"labscope/ports"
)

// catalogSource serves record collections from catalog tables. It applies
// the wire query server-side: ILIKE on name/code for free text, one
// equality clause per dimension, and LIMIT/OFFSET for the window.
type catalogSource struct {
	db *sqlx.DB
}

// resourceTables whitelists the table behind each resource
var resourceTables = map[catalog.Resource]string{
	catalog.ResourceTests:   "tests",
	catalog.ResourcePricing: "pricing",
	catalog.ResourceCenters: "centers",
	catalog.ResourceKPIs:    "kpis",
}

// dimensionColumns whitelists the column behind each filterable dimension.
// Only whitelisted names ever reach SQL text.
var dimensionColumns = map[catalog.Dimension]string{
	catalog.DimDepartment: "department",
	catalog.DimCity:       "city",
	catalog.DimSpecimen:   "specimen",
	catalog.DimDisease:    "disease",
}

// recordRow is the scan target for catalog tables
type recordRow struct {
	Code       string `db:"code"`
	Name       string `db:"name"`
	Price      string `db:"price"`
	Department string `db:"department"`
	City       string `db:"city"`
	Specimen   string `db:"specimen"`
	Disease    string `db:"disease"`
}

// NewCatalogSource connects to Postgres and returns a catalog source
func NewCatalogSource(databaseURL string) (ports.CatalogSource, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &catalogSource{db: db}, nil
}

// NewCatalogSourceWithDB wraps an existing connection
func NewCatalogSourceWithDB(db *sqlx.DB) ports.CatalogSource {
	return &catalogSource{db: db}
}

// FetchCollection reads one resource's records, applying the serialized
// filter server-side
func (s *catalogSource) FetchCollection(ctx context.Context, resource catalog.Resource, params url.Values) (catalog.Collection, error) {
	table, ok := resourceTables[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownResource, resource)
	}

	var (
		where []string
		args  []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q := params.Get("q"); q != "" {
		p := next("%" + q + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR code ILIKE %s)", p, p))
	}
	for dim, col := range dimensionColumns {
		if v := params.Get(string(dim)); v != "" {
			where = append(where, fmt.Sprintf("%s = %s", col, next(v)))
		}
	}

	query := fmt.Sprintf(`SELECT code, name, COALESCE(price::text, '') AS price,
		COALESCE(department, '') AS department, COALESCE(city, '') AS city,
		COALESCE(specimen, '') AS specimen, COALESCE(disease, '') AS disease
	FROM %s`, table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY code"
	if limit := params.Get("limit"); limit != "" {
		query += " LIMIT " + next(limit)
	}
	if offset := params.Get("offset"); offset != "" {
		query += " OFFSET " + next(offset)
	}

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	out := make(catalog.Collection, 0, len(rows))
	for _, row := range rows {
		out = append(out, catalog.Record{
			Code:  row.Code,
			Name:  row.Name,
			Price: row.Price,
			Attrs: map[catalog.Dimension]string{
				catalog.DimDepartment: row.Department,
				catalog.DimCity:       row.City,
				catalog.DimSpecimen:   row.Specimen,
				catalog.DimDisease:    row.Disease,
			},
		})
	}
	return out, nil
}

// FetchVocabulary reads the distinct observed values of one dimension from
// the tests table
func (s *catalogSource) FetchVocabulary(ctx context.Context, dim catalog.Dimension) ([]string, error) {
	col, ok := dimensionColumns[dim]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownDimension, dim)
	}
	query := fmt.Sprintf("SELECT DISTINCT %s FROM tests WHERE %s IS NOT NULL AND %s <> '' ORDER BY 1", col, col, col)

	var values []string
	if err := s.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("failed to query vocabulary for %s: %w", dim, err)
	}
	return values, nil
}
