package fetch

import (
	"context"
	"sync"
	"time"

	"labscope/domain/catalog"
	"labscope/domain/core"
	"labscope/internal"
	"labscope/internal/store"
	"labscope/ports"
)

// State is the controller's position in its per-resource lifecycle
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateInFlight
	StateSettled
	StateCancelled
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateInFlight:
		return "in_flight"
	case StateSettled:
		return "settled"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is delivered to the settle callback once per completed fetch.
// Err is nil on success; cancelled fetches never produce a Result.
type Result struct {
	Resource  catalog.Resource
	RequestID core.RequestID
	Err       error
}

// Options configures a controller
type Options struct {
	// Delay is the debounce window between the last filter mutation and
	// the fetch it triggers
	Delay time.Duration
	// FetchLimit is the row window requested from the source
	FetchLimit int
	// OnSettle is invoked outside the controller lock after every settled
	// fetch, success or failure
	OnSettle func(Result)
	Logger   *internal.Logger
}

// DefaultDelay is the debounce window used when none is configured
const DefaultDelay = 300 * time.Millisecond

// DefaultFetchLimit is the row window used when none is configured
const DefaultFetchLimit = 500

// Controller schedules and cancels remote fetches for one resource as
// filter inputs change. Debouncing bounds request volume under fast typing;
// at most one fetch is in flight at a time. A mutation arriving while a
// fetch is in flight cancels it, and a cancelled fetch's late result is
// unobservable to the store: correctness rests on the request-identity
// check at completion, not on the transport actually stopping.
type Controller struct {
	resource catalog.Resource
	source   ports.CatalogSource
	store    *store.Store
	delay    time.Duration
	limit    int
	onSettle func(Result)
	logger   *internal.Logger

	mu      sync.Mutex
	state   State
	filter  catalog.FilterState
	timer   *time.Timer
	pending core.RequestID
	cancel  context.CancelFunc
	lastErr error
}

// NewController creates an idle controller for one resource
func NewController(resource catalog.Resource, source ports.CatalogSource, st *store.Store, opts Options) *Controller {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	if opts.Logger == nil {
		opts.Logger = internal.NewDefaultLogger()
	}
	return &Controller{
		resource: resource,
		source:   source,
		store:    st,
		delay:    opts.Delay,
		limit:    opts.FetchLimit,
		onSettle: opts.OnSettle,
		logger:   opts.Logger,
		state:    StateIdle,
	}
}

// Mutate records a new filter state and (re)starts the debounce timer.
// If a fetch is in flight it is cancelled first; its eventual response,
// success or failure, will be discarded.
func (c *Controller) Mutate(f catalog.FilterState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter = f.Clone()

	if c.state == StateInFlight {
		c.invalidateLocked()
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.fire)
	c.state = StateScheduled
}

// Flush skips the remainder of the debounce window, issuing the scheduled
// fetch immediately. Used for the initial load, where there is nothing to
// debounce against.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.state != StateScheduled {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	c.fire()
}

// fire transitions Scheduled -> InFlight and launches the fetch carrying
// the then-current filter state
func (c *Controller) fire() {
	c.mu.Lock()
	if c.state != StateScheduled {
		c.mu.Unlock()
		return
	}
	reqID := core.RequestID(core.NewID())
	ctx, cancel := context.WithCancel(context.Background())
	c.pending = reqID
	c.cancel = cancel
	c.state = StateInFlight
	filter := c.filter.Clone()
	c.mu.Unlock()

	go c.run(ctx, reqID, filter)
}

func (c *Controller) run(ctx context.Context, reqID core.RequestID, filter catalog.FilterState) {
	params := filter.QueryParams(0, c.limit)
	coll, err := c.source.FetchCollection(ctx, c.resource, params)

	c.mu.Lock()
	if c.pending != reqID {
		// Superseded while in flight; the outcome is discarded whether it
		// succeeded or failed.
		c.mu.Unlock()
		c.logger.Debug("discarding superseded fetch for %s (request %s)", c.resource, reqID)
		return
	}
	c.pending = ""
	c.cancel = nil
	c.state = StateSettled
	if err != nil {
		c.lastErr = core.NewFetchError(string(c.resource), err)
	} else {
		c.lastErr = nil
		// Replace while still holding c.mu so a successor fetch settling
		// concurrently cannot be overwritten by this one's snapshot.
		c.store.Replace(coll)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("fetch for %s failed, keeping stale snapshot: %v", c.resource, err)
	} else {
		c.logger.Debug("fetch for %s settled with %d records", c.resource, len(coll))
	}
	if c.onSettle != nil {
		c.onSettle(Result{Resource: c.resource, RequestID: reqID, Err: err})
	}
}

// invalidateLocked cancels the outstanding fetch and makes its result
// unobservable. Caller holds c.mu.
func (c *Controller) invalidateLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.pending = ""
	c.state = StateCancelled
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error surfaced by the most recent settled fetch,
// or nil. Errors are resource-scoped; a failed fetch leaves the last good
// snapshot visible.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Stop cancels any outstanding work and returns the controller to Idle
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.state == StateInFlight {
		c.invalidateLocked()
	}
	c.state = StateIdle
}
