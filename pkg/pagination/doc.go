// Package pagination coordinates server-driven paging of the payment listing
// with the client-side filter applied to the loaded page.
//
// The gateway returns one page at a time. A Controller owns the paging state
// (1-based current page, items per page, gateway totals, filter spec) and
// asks a Fetcher for page (CurrentPage-1, ItemsPerPage) whenever navigation,
// a page-size change or a filter reset moves the current page:
//
//	ctrl := pagination.NewController(gatewayClient,
//		pagination.WithOnPageChange(func(int) { scrollToTop() }))
//	if err := ctrl.Load(ctx); err != nil {
//		// error is also kept in the snapshot for the view
//	}
//	ctrl.ChangePage(ctx, 3)
//	snap := ctrl.Snapshot() // snap.Visible is the filtered, sorted page
//
// State transitions are pure functions over State (ChangePage,
// ChangeItemsPerPage, ChangeFilter, ResetFilter, ApplyPage) so they can be
// tested without a gateway.
//
// Every fetch takes a sequence number. A response that resolves after a newer
// fetch was issued is dropped with ErrStaleResponse and never overwrites the
// state of the newer one.
//
// BatchFetcher is separate: it walks every page with a worker pool for bulk
// export and is not used by the interactive listing.
package pagination
