package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labscope/domain/catalog"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchCollectionFromCSV(t *testing.T) {
	path := writeCSV(t, "code,name,price,department,turnaround\n"+
		"CBC01,Complete Blood Count,350,Hematology,24h\n"+
		"LFT01,Liver Function,900,Biochemistry,48h\n"+
		",headerless orphan,1,ignored,\n")

	src := NewSource(path)
	coll, err := src.FetchCollection(context.Background(), catalog.ResourceTests, nil)

	require.NoError(t, err)
	require.Len(t, coll, 2) // the row without a code is skipped
	assert.Equal(t, "CBC01", coll[0].Code)
	assert.Equal(t, "350", coll[0].Price)
	assert.Equal(t, "Hematology", coll[0].Attr(catalog.DimDepartment))
	assert.Equal(t, "24h", coll[0].Extra["turnaround"])
}

func TestFetchVocabularyFromCSV(t *testing.T) {
	path := writeCSV(t, "code,name,price,department\n"+
		"A,First,1,Hematology\n"+
		"B,Second,2,Biochemistry\n"+
		"C,Third,3,Hematology\n")

	src := NewSource(path)
	values, err := src.FetchVocabulary(context.Background(), catalog.DimDepartment)

	require.NoError(t, err)
	assert.Equal(t, []string{"Biochemistry", "Hematology"}, values)
}

func TestFetchCollectionMissingFile(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "nope.xlsx"))
	_, err := src.FetchCollection(context.Background(), catalog.ResourceTests, nil)
	assert.Error(t, err)
}

func TestFetchCollectionCachesWorkbook(t *testing.T) {
	path := writeCSV(t, "code,name,price\nA,First,1\n")
	src := NewSource(path)

	first, err := src.FetchCollection(context.Background(), catalog.ResourceTests, nil)
	require.NoError(t, err)

	// The workbook is read once; deleting the file does not affect later
	// fetches of the cached snapshot.
	require.NoError(t, os.Remove(path))
	second, err := src.FetchCollection(context.Background(), catalog.ResourcePricing, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
