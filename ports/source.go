package ports

import (
	"context"
	"net/url"

	"labscope/domain/catalog"
)

// CatalogSource is the single outward call surface of the engine: read-only
// fetches of record collections and of the selectable vocabulary per
// categorical dimension.
//
// FetchCollection must honor ctx cancellation at the transport level where
// it can, and must fail distinctly from returning a successful empty
// collection. Implementations are free to ignore params they cannot apply
// (a workbook cannot filter); the client-side predicate re-narrows every
// snapshot, so over-fetching is safe and under-fetching is not.
type CatalogSource interface {
	FetchCollection(ctx context.Context, resource catalog.Resource, params url.Values) (catalog.Collection, error)
	FetchVocabulary(ctx context.Context, dim catalog.Dimension) ([]string, error)
}
