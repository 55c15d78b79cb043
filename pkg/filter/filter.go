// Package filter narrows and orders the payments of the currently loaded page.
//
// Apply never requests more data: it works on whatever page the caller holds,
// so a search only ever covers that page, not the whole remote dataset.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Sternrassler/paynow-client/pkg/payment"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the display order.
type SortKey string

const (
	// SortDateDesc orders newest first. This is the default.
	SortDateDesc SortKey = "date-desc"

	// SortDateAsc orders oldest first.
	SortDateAsc SortKey = "date-asc"

	// SortNameAsc orders by "first last", A to Z.
	SortNameAsc SortKey = "name-asc"

	// SortNameDesc orders by "first last", Z to A.
	SortNameDesc SortKey = "name-desc"
)

// StatusAll is the user-facing value meaning "no status filter".
const StatusAll = "All"

// ParseSortKey accepts the canonical keys plus the short forms "date" and "name".
func ParseSortKey(v string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "date", string(SortDateDesc):
		return SortDateDesc, nil
	case string(SortDateAsc):
		return SortDateAsc, nil
	case "name", string(SortNameAsc):
		return SortNameAsc, nil
	case string(SortNameDesc):
		return SortNameDesc, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", v)
	}
}

// ParseStatusFilter maps "All" or "" to no filter, otherwise to a payment status.
func ParseStatusFilter(v string) (payment.Status, error) {
	if v == "" || v == StatusAll {
		return "", nil
	}
	return payment.ParseStatus(v)
}

// Spec is the user-controlled search, status and sort configuration.
// The zero value is not the default: use DefaultSpec.
type Spec struct {
	// Search is matched case-insensitively as a substring.
	Search string `json:"search"`

	// Status restricts results to one status; empty means all statuses.
	Status payment.Status `json:"status,omitempty"`

	// Sort selects the display order.
	Sort SortKey `json:"sort"`
}

// DefaultSpec returns an empty search, no status filter, newest first.
func DefaultSpec() Spec {
	return Spec{Sort: SortDateDesc}
}

// Active reports whether the spec narrows the page (search text or status set).
// Sort order alone does not count.
func (s Spec) Active() bool {
	return s.Search != "" || s.Status != ""
}

// Apply returns the records matching spec, sorted. The input slice is never modified.
func Apply(records []payment.Payment, spec Spec) []payment.Payment {
	needle := strings.ToLower(spec.Search)

	out := make([]payment.Payment, 0, len(records))
	for _, r := range records {
		if matchesSearch(r, needle) && matchesStatus(r, spec.Status) {
			out = append(out, r)
		}
	}

	sortRecords(out, spec.Sort)
	return out
}

// matchesSearch expects needle already lowercased.
func matchesSearch(r payment.Payment, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{r.FullName(), r.ID, r.MaskedCardNumber, r.ZipCode} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func matchesStatus(r payment.Payment, status payment.Status) bool {
	return status == "" || r.Status == status
}

func sortRecords(records []payment.Payment, key SortKey) {
	switch key {
	case SortDateAsc:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		})
	case SortNameAsc, SortNameDesc:
		c := collatorPool.Get().(*collate.Collator)
		defer collatorPool.Put(c)
		desc := key == SortNameDesc
		sort.SliceStable(records, func(i, j int) bool {
			cmp := c.CompareString(records[i].FullName(), records[j].FullName())
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		})
	}
}

// collate.Collator is not safe for concurrent use, so each caller takes its own
// from the pool.
var collatorPool = sync.Pool{
	New: func() any {
		return collate.New(language.English, collate.Loose)
	},
}
