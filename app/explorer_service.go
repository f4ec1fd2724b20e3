package app

import (
	"sync"

	"labscope/adapters/stats/engine"
	"labscope/domain/catalog"
	domstats "labscope/domain/stats"
	"labscope/internal/compare"
	"labscope/internal/fetch"
	"labscope/internal/store"
)

// DerivedView is the complete recomputed output for one resource: the
// paginated filtered rows, the statistics block, and the resolved
// comparison set. It is a pure function of (store snapshot, filter state,
// page, comparison selection) and is rebuilt from scratch on every call;
// no derived state is retained between recomputes.
type DerivedView struct {
	Resource      catalog.Resource        `json:"resource"`
	Version       uint64                  `json:"version"`
	Filter        catalog.FilterState     `json:"filter"`
	TotalCount    int                     `json:"total_count"`
	FilteredCount int                     `json:"filtered_count"`
	Page          int                     `json:"page"`
	PageCount     int                     `json:"page_count"`
	PageSize      int                     `json:"page_size"`
	Rows          catalog.Collection      `json:"rows"`
	Aggregation   *domstats.Aggregation   `json:"aggregation,omitempty"`
	Distribution  *domstats.Distribution  `json:"distribution,omitempty"`
	Comparison    []catalog.Record        `json:"comparison,omitempty"`
	FetchError    string                  `json:"fetch_error,omitempty"`
}

// ExplorerOptions configures an explorer session
type ExplorerOptions struct {
	// GroupBy is the dimension the grouped statistics partition on
	GroupBy catalog.Dimension
	// PageSize is the fixed page size of the visible slice
	PageSize int
	// TypeaheadLimit caps comparison typeahead candidates
	TypeaheadLimit int
}

// ExplorerService is one interactive session over a single resource. It
// owns the filter state, the page number and the comparison selection, and
// forwards every filter mutation to the fetch controller. All intent
// methods are cheap; the actual work happens in View.
type ExplorerService struct {
	resource   catalog.Resource
	store      *store.Store
	engine     *engine.StatsEngine
	compare    *compare.Manager
	controller *fetch.Controller
	opts       ExplorerOptions

	mu     sync.Mutex
	filter catalog.FilterState
	page   int
}

// NewExplorerService creates a session with an empty filter on page 1.
// controller may be nil for offline use (pre-loaded store, no refetching).
func NewExplorerService(resource catalog.Resource, st *store.Store, eng *engine.StatsEngine, cmp *compare.Manager, ctrl *fetch.Controller, opts ExplorerOptions) *ExplorerService {
	if opts.GroupBy == "" {
		opts.GroupBy = catalog.DimDepartment
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.TypeaheadLimit <= 0 {
		opts.TypeaheadLimit = 8
	}
	return &ExplorerService{
		resource:   resource,
		store:      st,
		engine:     eng,
		compare:    cmp,
		controller: ctrl,
		opts:       opts,
		filter:     catalog.NewFilterState(),
		page:       1,
	}
}

// Load issues the initial fetch immediately, without debouncing
func (s *ExplorerService) Load() {
	if s.controller == nil {
		return
	}
	s.mu.Lock()
	filter := s.filter.Clone()
	s.mu.Unlock()
	s.controller.Mutate(filter)
	s.controller.Flush()
}

// SetQuery replaces the free-text query. Like every filter edit it resets
// the page to 1: a shrunk view must never strand the user on a page they
// did not navigate to.
func (s *ExplorerService) SetQuery(q string) {
	s.mu.Lock()
	s.filter.Query = q
	s.page = 1
	filter := s.filter.Clone()
	s.mu.Unlock()
	s.notify(filter)
}

// ToggleValue flips one value in a dimension's selected set and resets the
// page to 1
func (s *ExplorerService) ToggleValue(dim catalog.Dimension, value string) {
	s.mu.Lock()
	s.filter.Toggle(dim, value)
	s.page = 1
	filter := s.filter.Clone()
	s.mu.Unlock()
	s.notify(filter)
}

// ClearFilters drops the query and every selected value, resetting to page 1
func (s *ExplorerService) ClearFilters() {
	s.mu.Lock()
	s.filter = catalog.NewFilterState()
	s.page = 1
	filter := s.filter.Clone()
	s.mu.Unlock()
	s.notify(filter)
}

// SetPage records the requested page. The value is clamped against the
// filtered count at recompute time, so out-of-range requests are safe.
func (s *ExplorerService) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	s.page = page
}

// Filter returns a snapshot of the current filter state
func (s *ExplorerService) Filter() catalog.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Clone()
}

// ToggleCompare flips one record code in the comparison selection
func (s *ExplorerService) ToggleCompare(code string) error {
	return s.compare.Toggle(code)
}

// ClearCompare empties the comparison selection
func (s *ExplorerService) ClearCompare() {
	s.compare.Clear()
}

// Typeahead returns comparison candidates for a search string, excluding
// already-selected codes
func (s *ExplorerService) Typeahead(search string) []catalog.Record {
	return s.compare.Typeahead(search, s.opts.TypeaheadLimit)
}

// View recomputes the derived view from the current inputs. The filtered
// view, aggregation, distribution and page slice are derived fresh on
// every call; identical inputs yield an identical view.
func (s *ExplorerService) View() DerivedView {
	snap, version := s.store.Current()

	s.mu.Lock()
	filter := s.filter.Clone()
	page := s.page
	s.mu.Unlock()

	filtered := catalog.Filter(snap, filter)
	page = catalog.ClampPage(page, len(filtered), s.opts.PageSize)

	view := DerivedView{
		Resource:      s.resource,
		Version:       version,
		Filter:        filter,
		TotalCount:    len(snap),
		FilteredCount: len(filtered),
		Page:          page,
		PageCount:     catalog.PageCount(len(filtered), s.opts.PageSize),
		PageSize:      s.opts.PageSize,
		Rows:          catalog.Slice(filtered, page, s.opts.PageSize),
		Aggregation:   s.engine.Aggregate(filtered, s.opts.GroupBy),
		Distribution:  s.engine.Profile(filtered),
		Comparison:    s.compare.Resolve(),
	}
	if s.controller != nil {
		if err := s.controller.LastError(); err != nil {
			view.FetchError = err.Error()
		}
	}
	return view
}

func (s *ExplorerService) notify(filter catalog.FilterState) {
	if s.controller != nil {
		s.controller.Mutate(filter)
	}
}
