package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/rs/zerolog/log"
)

// BatchConfig holds batch fetcher configuration
type BatchConfig struct {
	// MaxConcurrency is the maximum number of parallel requests
	MaxConcurrency int
	// PageSize is the page size requested from the gateway
	PageSize int
	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultBatchConfig returns defaults sized for a single gateway instance
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		MaxConcurrency: 4,
		PageSize:       50,
		Timeout:        15 * time.Second,
	}
}

// PageResult represents the result of fetching a single page
type PageResult struct {
	PageIndex int
	Records   []payment.Payment
	Error     error
}

// BatchFetcher walks every page of the listing in parallel
type BatchFetcher struct {
	fetcher PageFetcher
	config  BatchConfig
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config BatchConfig) *BatchFetcher {
	defaults := DefaultBatchConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll returns every payment in gateway page order. If some pages fail,
// the records of the pages that succeeded are returned together with an error.
func (bf *BatchFetcher) FetchAll(ctx context.Context) ([]payment.Payment, error) {
	start := time.Now()

	// Fetch first page to get total page count
	firstPage, err := bf.fetchOne(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}
	totalPages := firstPage.TotalPages

	log.Info().
		Int("total_pages", totalPages).
		Int("total_items", firstPage.TotalElements).
		Int("size", bf.config.PageSize).
		Msg("Starting parallel page fetch")

	if totalPages <= 1 {
		log.Info().
			Int("pages", 1).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return append([]payment.Payment(nil), firstPage.Content...), nil
	}

	results := map[int][]payment.Payment{0: firstPage.Content}

	pageQueue := make(chan int, totalPages)
	pageResults := make(chan PageResult, totalPages)

	for idx := 1; idx < totalPages; idx++ {
		pageQueue <- idx
	}
	close(pageQueue)

	var wg sync.WaitGroup
	workers := min(bf.config.MaxConcurrency, totalPages-1)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go bf.worker(ctx, pageQueue, pageResults, &wg, i)
	}

	go func() {
		wg.Wait()
		close(pageResults)
	}()

	var firstErr error
	failed := 0
	for result := range pageResults {
		if result.Error != nil {
			failed++
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}

		results[result.PageIndex] = result.Records

		if len(results)%50 == 0 {
			log.Info().
				Int("fetched", len(results)).
				Int("total", totalPages).
				Float64("progress_pct", float64(len(results))/float64(totalPages)*100).
				Msg("Fetch progress")
		}
	}

	records := make([]payment.Payment, 0, firstPage.TotalElements)
	for idx := 0; idx < totalPages; idx++ {
		records = append(records, results[idx]...)
	}

	if firstErr != nil {
		log.Warn().
			Err(firstErr).
			Int("failed_pages", failed).
			Int("fetched_pages", len(results)).
			Int("total_pages", totalPages).
			Msg("Returning partial results")
		return records, fmt.Errorf("partial data (%d/%d pages): %w", len(results), totalPages, firstErr)
	}

	log.Info().
		Int("pages", totalPages).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return records, nil
}

func (bf *BatchFetcher) fetchOne(ctx context.Context, pageIndex int) (*payment.Page, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	page, err := bf.fetcher.FetchPage(pageCtx, pageIndex, bf.config.PageSize)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("gateway returned no page for index %d", pageIndex)
	}
	return page, nil
}

// worker processes page indices from the queue
func (bf *BatchFetcher) worker(ctx context.Context, pageQueue <-chan int, results chan<- PageResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for pageIndex := range pageQueue {
		if err := ctx.Err(); err != nil {
			results <- PageResult{PageIndex: pageIndex, Error: err}
			continue
		}

		page, err := bf.fetchOne(ctx, pageIndex)
		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("page", pageIndex).
				Msg("Page fetch failed")
			results <- PageResult{PageIndex: pageIndex, Error: err}
			continue
		}

		results <- PageResult{PageIndex: pageIndex, Records: page.Content}
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}
