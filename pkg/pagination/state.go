package pagination

import (
	"slices"

	"github.com/Sternrassler/paynow-client/pkg/filter"
	"github.com/Sternrassler/paynow-client/pkg/payment"
)

// DefaultItemsPerPage is the page size before the user picks one.
const DefaultItemsPerPage = 10

// PageSizes are the selectable items-per-page values.
var PageSizes = []int{5, 10, 20, 50}

// State is the paging state owned by a Controller.
// CurrentPage is 1-based; the gateway index is CurrentPage-1.
type State struct {
	CurrentPage  int         `json:"currentPage"`
	ItemsPerPage int         `json:"itemsPerPage"`
	TotalPages   int         `json:"totalPages"`
	TotalItems   int         `json:"totalItems"`
	Filter       filter.Spec `json:"filter"`
}

// NewState returns page 1 with the default page size and filter.
func NewState() State {
	return State{
		CurrentPage:  1,
		ItemsPerPage: DefaultItemsPerPage,
		Filter:       filter.DefaultSpec(),
	}
}

// PageIndex is the zero-based index sent to the gateway.
func (s State) PageIndex() int {
	return s.CurrentPage - 1
}

// StartItem is the 1-based position of the first item on the current page.
func (s State) StartItem() int {
	return (s.CurrentPage-1)*s.ItemsPerPage + 1
}

// EndItem is the 1-based position of the last item on the current page.
func (s State) EndItem() int {
	return min(s.CurrentPage*s.ItemsPerPage, s.TotalItems)
}

// HasPrevious reports whether the Previous control is enabled.
func (s State) HasPrevious() bool {
	return s.CurrentPage > 1
}

// HasNext reports whether the Next control is enabled.
func (s State) HasNext() bool {
	return s.CurrentPage < s.TotalPages
}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// ChangePage moves to target. Targets outside [1, TotalPages] are rejected
// and s is returned unchanged.
func ChangePage(s State, target int) (State, bool) {
	if target < 1 || target > s.TotalPages {
		return s, false
	}
	s.CurrentPage = target
	return s, true
}

// ChangeItemsPerPage switches the page size and returns to page 1.
// Sizes outside PageSizes are rejected.
func ChangeItemsPerPage(s State, n int) (State, bool) {
	if !ValidPageSize(n) {
		return s, false
	}
	s.ItemsPerPage = n
	s.CurrentPage = 1
	return s, true
}

// ChangeFilter replaces the filter spec and returns to page 1. The bool
// reports whether the current page moved, which is the only case that needs a
// fetch: filtering itself runs on the page already loaded.
func ChangeFilter(s State, spec filter.Spec) (State, bool) {
	moved := s.CurrentPage != 1
	s.Filter = spec
	s.CurrentPage = 1
	return s, moved
}

// ResetFilter restores the default filter spec.
func ResetFilter(s State) (State, bool) {
	return ChangeFilter(s, filter.DefaultSpec())
}

// ApplyPage records the gateway totals carried by a fetched page.
func ApplyPage(s State, p *payment.Page) State {
	if p == nil {
		return s
	}
	s.TotalPages = p.TotalPages
	s.TotalItems = p.TotalElements
	return s
}
