package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	statsengine "labscope/adapters/stats/engine"
	"labscope/app"
	"labscope/domain/catalog"
	"labscope/internal/compare"
	"labscope/internal/store"
	"labscope/internal/testkit"
	"labscope/internal/vocab"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st := store.New()
	coll := catalog.Collection{
		{
			Code: "CBC01", Name: "Complete Blood Count", Price: "350",
			Attrs: map[catalog.Dimension]string{catalog.DimDepartment: "Hematology"},
		},
		{
			Code: "LFT01", Name: "Liver Function", Price: "900",
			Attrs: map[catalog.Dimension]string{catalog.DimDepartment: "Biochemistry"},
		},
	}
	st.Replace(coll)

	eng := statsengine.NewStatsEngine(statsengine.DefaultOptions())
	cmp := compare.NewManager(st, 2)
	sess := app.NewExplorerService(catalog.ResourceTests, st, eng, cmp, nil, app.ExplorerOptions{PageSize: 10})

	src := testkit.NewScriptedSource()
	src.SetVocabulary(catalog.DimDepartment, []string{"Biochemistry", "Hematology"})
	loader := vocab.NewLoader(src, 2, nil)
	loader.Prefetch(context.Background(), []catalog.Dimension{catalog.DimDepartment})

	return NewServer(map[catalog.Resource]*app.ExplorerService{catalog.ResourceTests: sess}, loader, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) app.DerivedView {
	t.Helper()
	var view app.DerivedView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	return view
}

func TestViewEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tests/view", "")

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, 2, view.FilteredCount)
	require.NotNil(t, view.Aggregation)
}

func TestUnknownResourceIs404(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/nonsense/view", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryIntentNarrowsView(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/tests/query", `{"query":"cbc"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, 1, view.FilteredCount)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "CBC01", view.Rows[0].Code)
}

func TestToggleFilterIntent(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/tests/filter/department/Hematology", "")

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, 1, view.FilteredCount)
	assert.Equal(t, 1, view.Page)
}

func TestCompareIntentAndCap(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/tests/compare/CBC01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	require.Len(t, view.Comparison, 1)

	doRequest(t, s, http.MethodPost, "/api/tests/compare/LFT01", "")

	// The manager was built with a cap of 2.
	rec = doRequest(t, s, http.MethodPost, "/api/tests/compare/TSH01", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/tests/compare", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeView(t, rec).Comparison)
}

func TestTypeaheadEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tests/typeahead?q=liver", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Candidates []catalog.Record `json:"candidates"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Candidates, 1)
	assert.Equal(t, "LFT01", body.Candidates[0].Code)
}

func TestVocabularyEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/vocab/department", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var v catalog.Vocabulary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, []string{"Biochemistry", "Hematology"}, v.Values)
}

func TestPageIntentValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/tests/page/notanumber", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/tests/page/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeView(t, rec).Page) // clamped, two records only
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tests/report", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "tests catalog summary")
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/tests/compare/CBC01", "")

	rec := doRequest(t, s, http.MethodGet, "/api/tests/export.xlsx", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "comparison.xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}
