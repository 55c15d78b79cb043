package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/paynow-client/pkg/client"
	"github.com/Sternrassler/paynow-client/pkg/filter"
	"github.com/Sternrassler/paynow-client/pkg/pagination"
	"github.com/Sternrassler/paynow-client/pkg/view"
)

// listingQuery is what a user asks of the payment listing, from flags or URL query.
type listingQuery struct {
	Page   int
	Size   int
	Search string
	Status string
	Sort   string
}

func (q listingQuery) spec() (filter.Spec, error) {
	status, err := filter.ParseStatusFilter(q.Status)
	if err != nil {
		return filter.Spec{}, err
	}
	sortKey, err := filter.ParseSortKey(q.Sort)
	if err != nil {
		return filter.Spec{}, err
	}
	return filter.Spec{Search: q.Search, Status: status, Sort: sortKey}, nil
}

func (q listingQuery) validate() error {
	if q.Page < 1 {
		return fmt.Errorf("page must be at least 1 (got %d)", q.Page)
	}
	if !pagination.ValidPageSize(q.Size) {
		return fmt.Errorf("page size must be one of %v (got %d)", pagination.PageSizes, q.Size)
	}
	_, err := q.spec()
	return err
}

// loadListing loads the requested page and composes the view. Call validate
// first: an invalid query yields an empty view. A page past the end is
// clamped to the last page. The returned view is usable even when err is
// set, since it carries the error banner.
func loadListing(ctx context.Context, source pagination.PageFetcher, q listingQuery) (view.View, error) {
	spec, err := q.spec()
	if err != nil {
		return view.View{}, err
	}

	ctrl := pagination.NewController(source,
		pagination.WithItemsPerPage(q.Size),
		pagination.WithFilter(spec),
		pagination.WithInitialPage(q.Page),
	)

	loadErr := ctrl.Load(ctx)
	if loadErr == nil {
		s := ctrl.State()
		if s.TotalPages > 0 && s.CurrentPage > s.TotalPages {
			_, loadErr = ctrl.ChangePage(ctx, s.TotalPages)
		}
	}

	v := view.Compose(ctrl.Snapshot())
	if loadErr != nil {
		return v, fmt.Errorf("load payments: %w", loadErr)
	}
	return v, nil
}

// userError turns a gateway failure into the text shown to the user.
func userError(err error, fallback string) error {
	return fmt.Errorf("%s", client.UserMessage(err, fallback))
}
