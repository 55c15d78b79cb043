// Package view turns a pagination snapshot into what the user sees: the rows,
// the page strip, the summary texts and the empty, loading and error states.
//
// Compose is pure. The same View backs the terminal output of the CLI and
// the JSON served by the backend-for-frontend.
package view

import (
	"fmt"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/client"
	"github.com/Sternrassler/paynow-client/pkg/filter"
	"github.com/Sternrassler/paynow-client/pkg/pagination"
	"github.com/Sternrassler/paynow-client/pkg/payment"
)

// User-visible texts.
const (
	LoadingText       = "Loading payments..."
	LoadErrorFallback = "Failed to load payments. Please try again later."
	EmptyMessage      = "No payments found"
	EmptyHintNoData   = "Try creating your first payment"
	EmptyHintFiltered = "Try adjusting your search or filters"
)

// DateLayout formats creation timestamps.
const DateLayout = "Jan 2, 2006, 03:04 PM"

// Row is one payment as displayed.
type Row struct {
	ID        string         `json:"id"`
	ShortID   string         `json:"shortId"`
	Name      string         `json:"name"`
	Status    payment.Status `json:"status"`
	Amount    string         `json:"amount"`
	Card      string         `json:"card"`
	ZipCode   string         `json:"zipCode"`
	Created   string         `json:"created"`
	CreatedAt time.Time      `json:"createdAt"`
}

// View is the composed listing screen.
type View struct {
	Loading     bool   `json:"loading"`
	LoadingText string `json:"loadingText,omitempty"`

	// Error is the banner text, empty when the last fetch succeeded.
	Error string `json:"error,omitempty"`

	Rows []Row `json:"rows"`

	// Empty is set when there is nothing to list; EmptyHint tells the user why.
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
	EmptyHint    string `json:"emptyHint,omitempty"`

	// Summary is empty when no rows are shown.
	Summary string `json:"summary,omitempty"`

	ShowPagination bool                  `json:"showPagination"`
	Pages          []pagination.PageItem `json:"pages,omitempty"`
	RangeLabel     string                `json:"rangeLabel,omitempty"`
	HasPrevious    bool                  `json:"hasPrevious"`
	HasNext        bool                  `json:"hasNext"`
	PageSizes      []int                 `json:"pageSizes"`

	State pagination.State `json:"state"`
}

// Summary is the results line under the list. count is the number of rows left
// on the current page after filtering.
func Summary(spec filter.Spec, count, totalItems int) string {
	if spec.Active() {
		return fmt.Sprintf("Showing %d of %d payments", count, totalItems)
	}
	return fmt.Sprintf("Total: %d payments", totalItems)
}

// RangeLabel is the "Showing start-end of total" label of the page control.
func RangeLabel(s pagination.State) string {
	return fmt.Sprintf("Showing %d-%d of %d", s.StartItem(), s.EndItem(), s.TotalItems)
}

// EmptyHint explains an empty list: no data at all, or nothing left after filtering.
func EmptyHint(totalItems int) string {
	if totalItems == 0 {
		return EmptyHintNoData
	}
	return EmptyHintFiltered
}

// Compose builds the view for a snapshot.
func Compose(snap pagination.Snapshot) View {
	s := snap.State
	v := View{
		State:     s,
		PageSizes: pagination.PageSizes,
		Rows:      []Row{},
	}

	if snap.Loading {
		v.Loading = true
		v.LoadingText = LoadingText
		return v
	}

	if snap.Err != nil {
		v.Error = client.UserMessage(snap.Err, LoadErrorFallback)
	}

	if len(snap.Visible) == 0 {
		// A failure with nothing loaded shows the banner alone.
		if snap.Err == nil {
			v.Empty = true
			v.EmptyMessage = EmptyMessage
			v.EmptyHint = EmptyHint(s.TotalItems)
		}
		return v
	}

	v.Rows = make([]Row, len(snap.Visible))
	for i, p := range snap.Visible {
		v.Rows[i] = NewRow(p)
	}

	v.Summary = Summary(s.Filter, len(snap.Visible), s.TotalItems)

	if s.TotalPages > 1 {
		v.ShowPagination = true
		v.Pages = pagination.PageNumbers(s.CurrentPage, s.TotalPages)
		v.RangeLabel = RangeLabel(s)
		v.HasPrevious = s.HasPrevious()
		v.HasNext = s.HasNext()
	}

	return v
}

// NewRow formats one payment.
func NewRow(p payment.Payment) Row {
	return Row{
		ID:        p.ID,
		ShortID:   p.ShortID(),
		Name:      p.FullName(),
		Status:    p.Status,
		Amount:    "$" + p.Amount.StringFixed(2),
		Card:      p.MaskedCardNumber,
		ZipCode:   p.ZipCode,
		Created:   p.CreatedAt.Format(DateLayout),
		CreatedAt: p.CreatedAt,
	}
}
