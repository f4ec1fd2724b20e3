package compare

import (
	"strings"
	"sync"

	"labscope/domain/catalog"
	"labscope/domain/core"
	"labscope/internal/store"
)

// Manager maintains the user-curated comparison selection for one resource:
// a deduplicated set of record codes, independent of the active filter,
// capped at a configured maximum. Membership tests are O(1); insertion
// order is kept so resolved views render stably.
type Manager struct {
	mu     sync.Mutex
	store  *store.Store
	limit  int
	member map[string]bool
	order  []string
}

// DefaultLimit bounds the selection; the table layout degrades beyond this.
const DefaultLimit = 6

// NewManager creates an empty comparison manager over a record store
func NewManager(st *store.Store, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		store:  st,
		limit:  limit,
		member: make(map[string]bool),
	}
}

// Toggle adds the code if absent and removes it if present, so toggling
// twice restores the original selection. Adding beyond the cap fails with
// ErrCompareFull; removal always succeeds.
func (m *Manager) Toggle(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.member[code] {
		delete(m.member, code)
		for i, c := range m.order {
			if c == code {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
		return nil
	}
	if len(m.member) >= m.limit {
		return core.ErrCompareFull
	}
	m.member[code] = true
	m.order = append(m.order, code)
	return nil
}

// Clear empties the selection
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.member = make(map[string]bool)
	m.order = nil
}

// Has reports membership in O(1)
func (m *Manager) Has(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.member[code]
}

// Codes returns the selected codes in insertion order
func (m *Manager) Codes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the selection size
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.member)
}

// Resolve maps each selected code to its record via the store. A code the
// current snapshot no longer carries (data refresh) is silently dropped
// from the resolved view; the selection itself is left untouched.
func (m *Manager) Resolve() []catalog.Record {
	codes := m.Codes()
	out := make([]catalog.Record, 0, len(codes))
	for _, code := range codes {
		if r, ok := m.store.Lookup(code); ok {
			out = append(out, r)
		}
	}
	return out
}

// Typeahead filters the full store by a comparison-specific search string,
// matching name and code case-insensitively, excluding codes already in the
// selection, returning at most max candidates in source order. An empty
// search string yields no candidates.
func (m *Manager) Typeahead(search string, max int) []catalog.Record {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" || max <= 0 {
		return nil
	}

	snap, _ := m.store.Current()
	var out []catalog.Record
	for _, r := range snap {
		if m.Has(r.Code) {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(r.Code), search) {
			continue
		}
		out = append(out, r)
		if len(out) == max {
			break
		}
	}
	return out
}
