package pagination

import "strconv"

// maxVisiblePages is the largest total shown without ellipses.
const maxVisiblePages = 5

// PageItem is one entry of the page strip: a page number or an ellipsis.
type PageItem struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// String renders the item as shown on the strip.
func (p PageItem) String() string {
	if p.Ellipsis {
		return "..."
	}
	return strconv.Itoa(p.Number)
}

// PageNumbers returns the windowed page strip for current out of total pages.
//
// Up to five pages are all listed. Beyond that the strip always holds the first
// and last page plus up to three pages centred on current, with an ellipsis
// on each side where pages are skipped.
func PageNumbers(current, total int) []PageItem {
	if total <= 0 {
		return nil
	}

	items := make([]PageItem, 0, maxVisiblePages+2)
	if total <= maxVisiblePages {
		for i := 1; i <= total; i++ {
			items = append(items, PageItem{Number: i})
		}
		return items
	}

	current = min(max(current, 1), total)

	items = append(items, PageItem{Number: 1})
	if current > 3 {
		items = append(items, PageItem{Ellipsis: true})
	}

	start := max(2, current-1)
	end := min(total-1, current+1)
	for i := start; i <= end; i++ {
		items = append(items, PageItem{Number: i})
	}

	if current < total-2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	items = append(items, PageItem{Number: total})

	return items
}
