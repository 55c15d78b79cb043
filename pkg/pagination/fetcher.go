package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/logging"
	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidPageRequest is returned for a negative index or non-positive size.
	ErrInvalidPageRequest = errors.New("invalid page request")

	// ErrStaleResponse is returned to a caller whose response arrived after a
	// newer fetch was issued. The response was discarded.
	ErrStaleResponse = errors.New("stale page response discarded")
)

// Prometheus metrics for page fetching.
var (
	pageFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_page_fetches_total",
		Help: "Page fetches by result (success, error, stale)",
	}, []string{"result"})

	pageFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "paynow_page_fetch_duration_seconds",
		Help:    "Duration of single page fetches in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	})

	pageFetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "paynow_page_fetches_in_flight",
		Help: "Page fetches currently waiting on the gateway",
	})
)

// PageFetcher is the single-page gateway call. *client.Client implements it.
type PageFetcher interface {
	// FetchPage fetches one page; pageIndex is zero-based.
	FetchPage(ctx context.Context, pageIndex, size int) (*payment.Page, error)
}

// FetchState is a point-in-time view of a Fetcher.
type FetchState struct {
	// Page is the last successfully loaded page, nil before the first success.
	Page *payment.Page
	// Loading is true while the latest issued fetch is outstanding.
	Loading bool
	// Err is the failure of the latest resolved fetch, nil after a success.
	Err error
	// Seq is the sequence number of the latest issued fetch.
	Seq uint64
}

// Fetcher loads single pages and keeps the loading/error state of the listing.
// Concurrent fetches are allowed; only the most recently issued one may
// change the state.
type Fetcher struct {
	source PageFetcher
	logger zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	page    *payment.Page
	loading bool
	err     error
}

// NewFetcher creates a fetcher backed by source.
func NewFetcher(source PageFetcher) *Fetcher {
	if source == nil {
		panic("page source cannot be nil")
	}
	return &Fetcher{
		source: source,
		logger: logging.NewLogger("pagination"),
	}
}

// Fetch loads page pageIndex of the given size.
//
// On success the page replaces the previous one and the error is cleared. On
// failure the previous page is kept and the error recorded. commit, if not
// nil, runs with the accepted page before Fetch returns and before any newer
// fetch can be accepted. A response superseded by a newer fetch changes
// nothing and yields ErrStaleResponse.
func (f *Fetcher) Fetch(ctx context.Context, pageIndex, size int, commit func(*payment.Page)) (*payment.Page, error) {
	if pageIndex < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: page=%d size=%d", ErrInvalidPageRequest, pageIndex, size)
	}

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.loading = true
	f.mu.Unlock()

	f.logger.Debug().
		Int("page", pageIndex).
		Int("size", size).
		Uint64("seq", seq).
		Msg("Fetching page")

	start := time.Now()
	pageFetchesInFlight.Inc()
	page, err := f.source.FetchPage(ctx, pageIndex, size)
	pageFetchesInFlight.Dec()
	pageFetchDuration.Observe(time.Since(start).Seconds())

	if err == nil && page == nil {
		err = fmt.Errorf("gateway returned no page for index %d", pageIndex)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.seq {
		pageFetchesTotal.WithLabelValues("stale").Inc()
		f.logger.Debug().
			Int("page", pageIndex).
			Uint64("seq", seq).
			Uint64("latest_seq", f.seq).
			Msg("Discarding stale page response")
		return nil, ErrStaleResponse
	}

	f.loading = false

	if err != nil {
		pageFetchesTotal.WithLabelValues("error").Inc()
		f.err = err
		f.logger.Warn().
			Err(err).
			Int("page", pageIndex).
			Int("size", size).
			Msg("Page fetch failed")
		return nil, err
	}

	pageFetchesTotal.WithLabelValues("success").Inc()
	f.page = page
	f.err = nil
	if commit != nil {
		commit(page)
	}

	f.logger.Debug().
		Int("page", pageIndex).
		Int("records", len(page.Content)).
		Int("total_items", page.TotalElements).
		Int("total_pages", page.TotalPages).
		Dur("duration", time.Since(start)).
		Msg("Page loaded")

	return page, nil
}

// State returns the current fetch state.
func (f *Fetcher) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FetchState{
		Page:    f.page,
		Loading: f.loading,
		Err:     f.err,
		Seq:     f.seq,
	}
}
