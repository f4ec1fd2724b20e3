package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"labscope/domain/catalog"
	"labscope/domain/core"
)

// Source serves catalog collections from an offline workbook snapshot
// (xlsx or csv). The first row is the header; rows become records. A
// workbook cannot filter, so fetch params are ignored and the client-side
// predicate does the narrowing.
type Source struct {
	filePath string
	fileType string // "xlsx" or "csv"

	mu     sync.Mutex
	cached catalog.Collection
}

// NewSource creates a workbook source for an xlsx or csv file
func NewSource(filePath string) *Source {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Source{filePath: filePath, fileType: fileType}
}

// FetchCollection returns the workbook's records. The file is read once
// and cached; every resource maps to the same snapshot.
func (s *Source) FetchCollection(ctx context.Context, resource catalog.Resource, params url.Values) (catalog.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load()
}

// FetchVocabulary derives the distinct observed values of a dimension from
// the workbook records, sorted for stable display
func (s *Source) FetchVocabulary(ctx context.Context, dim catalog.Dimension) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coll, err := s.load()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var values []string
	for _, r := range coll {
		v := r.Attr(dim)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

func (s *Source) load() (catalog.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}

	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", s.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch s.fileType {
	case "csv":
		rows, err = s.readCSVRows()
	default:
		rows, err = s.readExcelRows()
	}
	if err != nil {
		return nil, err
	}

	coll, err := rowsToCollection(rows)
	if err != nil {
		return nil, err
	}
	s.cached = coll
	return coll, nil
}

func (s *Source) readCSVRows() ([][]string, error) {
	f, err := os.Open(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func (s *Source) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrBadPayload)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// rowsToCollection maps a header row plus data rows into records. Header
// names matching a dimension land in Attrs; code/name/price fill the core
// schema; everything else lands in Extra.
func rowsToCollection(rows [][]string) (catalog.Collection, error) {
	if len(rows) == 0 {
		return catalog.Collection{}, nil
	}

	header := rows[0]
	dims := make(map[string]catalog.Dimension, len(catalog.Dimensions))
	for _, dim := range catalog.Dimensions {
		dims[string(dim)] = dim
	}

	var out catalog.Collection
	for _, row := range rows[1:] {
		rec := catalog.Record{}
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			key := strings.ToLower(strings.TrimSpace(header[i]))
			switch key {
			case "code":
				rec.Code = cell
			case "name":
				rec.Name = cell
			case "price":
				rec.Price = cell
			default:
				if dim, ok := dims[key]; ok {
					if rec.Attrs == nil {
						rec.Attrs = make(map[catalog.Dimension]string)
					}
					rec.Attrs[dim] = cell
				} else if key != "" {
					if rec.Extra == nil {
						rec.Extra = make(map[string]string)
					}
					rec.Extra[key] = cell
				}
			}
		}
		if rec.Code == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
