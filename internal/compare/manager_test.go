package compare

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labscope/domain/catalog"
	"labscope/domain/core"
	"labscope/internal/store"
)

func seededStore() *store.Store {
	st := store.New()
	st.Replace(catalog.Collection{
		{Code: "CBC01", Name: "Complete Blood Count"},
		{Code: "LFT01", Name: "Liver Function"},
		{Code: "TSH01", Name: "Thyroid Profile"},
		{Code: "GLU01", Name: "Blood Glucose"},
	})
	return st
}

func TestToggleInvolution(t *testing.T) {
	m := NewManager(seededStore(), 0)

	require.NoError(t, m.Toggle("CBC01"))
	assert.True(t, m.Has("CBC01"))

	require.NoError(t, m.Toggle("CBC01"))
	assert.False(t, m.Has("CBC01"))
	assert.Zero(t, m.Len())
}

func TestToggleRespectsCap(t *testing.T) {
	m := NewManager(seededStore(), 2)

	require.NoError(t, m.Toggle("CBC01"))
	require.NoError(t, m.Toggle("LFT01"))

	err := m.Toggle("TSH01")
	assert.ErrorIs(t, err, core.ErrCompareFull)
	assert.Equal(t, 2, m.Len())

	// Removal always succeeds, even at the cap.
	require.NoError(t, m.Toggle("CBC01"))
	require.NoError(t, m.Toggle("TSH01"))
}

func TestClearEmptiesSelection(t *testing.T) {
	m := NewManager(seededStore(), 0)
	require.NoError(t, m.Toggle("CBC01"))
	require.NoError(t, m.Toggle("LFT01"))

	m.Clear()

	assert.Zero(t, m.Len())
	assert.Empty(t, m.Codes())
}

func TestResolveKeepsInsertionOrder(t *testing.T) {
	m := NewManager(seededStore(), 0)
	require.NoError(t, m.Toggle("TSH01"))
	require.NoError(t, m.Toggle("CBC01"))

	resolved := m.Resolve()

	require.Len(t, resolved, 2)
	assert.Equal(t, "TSH01", resolved[0].Code)
	assert.Equal(t, "CBC01", resolved[1].Code)
}

func TestResolveSilentlyDropsMissingCodes(t *testing.T) {
	st := seededStore()
	m := NewManager(st, 0)
	require.NoError(t, m.Toggle("CBC01"))
	require.NoError(t, m.Toggle("LFT01"))

	// A data refresh removed LFT01; the selection keeps the code, the
	// resolved view drops it.
	st.Replace(catalog.Collection{{Code: "CBC01", Name: "Complete Blood Count"}})

	resolved := m.Resolve()
	require.Len(t, resolved, 1)
	assert.Equal(t, "CBC01", resolved[0].Code)
	assert.True(t, m.Has("LFT01"))
}

func TestTypeaheadExcludesSelectedAndCaps(t *testing.T) {
	st := store.New()
	coll := make(catalog.Collection, 12)
	for i := range coll {
		coll[i] = catalog.Record{
			Code: fmt.Sprintf("BLD%02d", i+1),
			Name: fmt.Sprintf("Blood Panel %d", i+1),
		}
	}
	st.Replace(coll)
	m := NewManager(st, 0)
	require.NoError(t, m.Toggle("BLD01"))

	got := m.Typeahead("blood", 8)

	require.Len(t, got, 8)
	// Source order, minus the already-selected first record.
	assert.Equal(t, "BLD02", got[0].Code)
	assert.Equal(t, "BLD09", got[7].Code)
}

func TestTypeaheadEmptySearchYieldsNothing(t *testing.T) {
	m := NewManager(seededStore(), 0)
	assert.Empty(t, m.Typeahead("", 8))
	assert.Empty(t, m.Typeahead("   ", 8))
}

func TestTypeaheadMatchesCode(t *testing.T) {
	m := NewManager(seededStore(), 0)

	got := m.Typeahead("tsh", 8)

	require.Len(t, got, 1)
	assert.Equal(t, "TSH01", got[0].Code)
}
