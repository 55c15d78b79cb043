package pagination

import (
	"context"
	"sync"

	"github.com/Sternrassler/paynow-client/pkg/filter"
	"github.com/Sternrassler/paynow-client/pkg/logging"
	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/rs/zerolog"
)

// Controller owns the listing state and turns user intents into page fetches.
// It is safe for concurrent use.
type Controller struct {
	fetcher      *Fetcher
	onPageChange func(page int)
	logger       zerolog.Logger

	// mu guards state. It is never held while calling into fetcher.
	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithItemsPerPage sets the initial page size. Unsupported sizes are ignored.
func WithItemsPerPage(n int) Option {
	return func(c *Controller) {
		if ValidPageSize(n) {
			c.state.ItemsPerPage = n
		}
	}
}

// WithFilter sets the initial filter spec.
func WithFilter(spec filter.Spec) Option {
	return func(c *Controller) {
		c.state.Filter = spec
	}
}

// WithInitialPage sets the page loaded by the first Load. It is not range
// checked because totals are unknown until the gateway answers.
func WithInitialPage(page int) Option {
	return func(c *Controller) {
		if page >= 1 {
			c.state.CurrentPage = page
		}
	}
}

// WithOnPageChange registers the view hook run after an accepted page change,
// e.g. scrolling back to the top of the list.
func WithOnPageChange(fn func(page int)) Option {
	return func(c *Controller) {
		c.onPageChange = fn
	}
}

// NewController creates a controller reading pages from source.
func NewController(source PageFetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: NewFetcher(source),
		logger:  logging.NewLogger("pagination"),
		state:   NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the current page. Call it once to populate the totals.
func (c *Controller) Load(ctx context.Context) error {
	return c.fetch(ctx, c.State())
}

// ChangePage navigates to target (1-based). Out-of-range targets are a
// no-op and return false without touching the gateway.
func (c *Controller) ChangePage(ctx context.Context, target int) (bool, error) {
	c.mu.Lock()
	next, ok := ChangePage(c.state, target)
	if ok {
		c.state = next
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Debug().
			Int("target", target).
			Int("total_pages", next.TotalPages).
			Msg("Page change rejected")
		return false, nil
	}

	if c.onPageChange != nil {
		c.onPageChange(target)
	}
	return true, c.fetch(ctx, next)
}

// ChangeItemsPerPage switches the page size, returns to page 1 and refetches.
// Sizes outside PageSizes are a no-op and return false.
func (c *Controller) ChangeItemsPerPage(ctx context.Context, n int) (bool, error) {
	c.mu.Lock()
	next, ok := ChangeItemsPerPage(c.state, n)
	if ok {
		c.state = next
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Debug().Int("size", n).Msg("Page size rejected")
		return false, nil
	}
	return true, c.fetch(ctx, next)
}

// ChangeFilter replaces the filter and returns to page 1. A fetch happens
// only if that moved the current page.
func (c *Controller) ChangeFilter(ctx context.Context, spec filter.Spec) error {
	c.mu.Lock()
	next, moved := ChangeFilter(c.state, spec)
	c.state = next
	c.mu.Unlock()

	if !moved {
		return nil
	}
	return c.fetch(ctx, next)
}

// ResetFilter restores the default filter and returns to page 1.
func (c *Controller) ResetFilter(ctx context.Context) error {
	return c.ChangeFilter(ctx, filter.DefaultSpec())
}

// State returns a copy of the paging state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// fetch loads the page addressed by s and folds the totals into the state.
func (c *Controller) fetch(ctx context.Context, s State) error {
	_, err := c.fetcher.Fetch(ctx, s.PageIndex(), s.ItemsPerPage, func(p *payment.Page) {
		c.mu.Lock()
		c.state = ApplyPage(c.state, p)
		c.mu.Unlock()
	})
	return err
}

// Snapshot is everything the view needs to render the listing.
type Snapshot struct {
	State   State
	Page    *payment.Page
	Loading bool
	Err     error
	// Visible is the loaded page after filter.Apply with State.Filter.
	Visible []payment.Payment
}

// Snapshot captures the current state and derives the visible records.
func (c *Controller) Snapshot() Snapshot {
	fs := c.fetcher.State()
	s := c.State()

	var records []payment.Payment
	if fs.Page != nil {
		records = fs.Page.Content
	}

	return Snapshot{
		State:   s,
		Page:    fs.Page,
		Loading: fs.Loading,
		Err:     fs.Err,
		Visible: filter.Apply(records, s.Filter),
	}
}
