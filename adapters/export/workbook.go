package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"labscope/domain/catalog"
)

// ComparisonWorkbook writes the resolved comparison set as an xlsx sheet,
// one record per row: the core schema first, then each categorical
// dimension, then any extra display fields in a stable order.
func ComparisonWorkbook(w io.Writer, records []catalog.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	extraKeys := collectExtraKeys(records)
	header := []interface{}{"Code", "Name", "Price"}
	for _, dim := range catalog.Dimensions {
		header = append(header, string(dim))
	}
	for _, key := range extraKeys {
		header = append(header, key)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		row := []interface{}{r.Code, r.Name, r.Price}
		for _, dim := range catalog.Dimensions {
			row = append(row, r.Attr(dim))
		}
		for _, key := range extraKeys {
			row = append(row, r.Extra[key])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// collectExtraKeys gathers every extra field name across the records,
// ordered by first appearance with a record's own keys sorted
func collectExtraKeys(records []catalog.Record) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range records {
		recKeys := make([]string, 0, len(r.Extra))
		for key := range r.Extra {
			recKeys = append(recKeys, key)
		}
		sort.Strings(recKeys)
		for _, key := range recKeys {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}
