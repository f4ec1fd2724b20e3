package vocab

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"labscope/domain/catalog"
	"labscope/internal"
	"labscope/ports"
)

// Loader populates the selectable values for each categorical dimension.
// Vocabularies load independently of the main collection fetch cadence, and
// one dimension failing leaves the others usable.
type Loader struct {
	source ports.CatalogSource
	sem    *semaphore.Weighted
	logger *internal.Logger

	mu     sync.RWMutex
	values map[catalog.Dimension][]string
	errs   map[catalog.Dimension]error
}

// NewLoader creates a loader that allows at most maxConcurrent vocabulary
// fetches at a time
func NewLoader(source ports.CatalogSource, maxConcurrent int64, logger *internal.Logger) *Loader {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Loader{
		source: source,
		sem:    semaphore.NewWeighted(maxConcurrent),
		logger: logger,
		values: make(map[catalog.Dimension][]string),
		errs:   make(map[catalog.Dimension]error),
	}
}

// Prefetch loads the vocabularies for all given dimensions concurrently,
// bounded by the loader's semaphore. It blocks until every fetch settled;
// per-dimension failures are recorded, not returned.
func (l *Loader) Prefetch(ctx context.Context, dims []catalog.Dimension) {
	var wg sync.WaitGroup
	for _, dim := range dims {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			l.setErr(dim, err)
			continue
		}
		wg.Add(1)
		go func(dim catalog.Dimension) {
			defer wg.Done()
			defer l.sem.Release(1)
			values, err := l.source.FetchVocabulary(ctx, dim)
			if err != nil {
				l.logger.Warn("vocabulary fetch for %s failed: %v", dim, err)
				l.setErr(dim, err)
				return
			}
			l.set(dim, values)
		}(dim)
	}
	wg.Wait()
}

// Values returns the loaded vocabulary for a dimension, in source order.
// Unloaded or failed dimensions yield an empty list.
func (l *Loader) Values(dim catalog.Dimension) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.values[dim]
}

// Err returns the last load error for a dimension, or nil
func (l *Loader) Err(dim catalog.Dimension) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.errs[dim]
}

func (l *Loader) set(dim catalog.Dimension, values []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[dim] = values
	delete(l.errs, dim)
}

func (l *Loader) setErr(dim catalog.Dimension, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs[dim] = err
}
