package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/shopspring/decimal"
)

// BaseTime is the creation time of the newest fixture payment.
var BaseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	firstNames = []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace"}
	lastNames  = []string{"Smith", "Jones", "Brown", "Miller", "Davis"}
)

// Payments returns n deterministic payments, newest first, one hour apart.
// Statuses cycle through PROCESSED, PENDING and FAILED.
func Payments(n int) []payment.Payment {
	out := make([]payment.Payment, n)
	for i := range out {
		out[i] = payment.Payment{
			ID:               fmt.Sprintf("%08d-0000-4000-8000-%012d", i+1, i+1),
			FirstName:        firstNames[i%len(firstNames)],
			LastName:         lastNames[i%len(lastNames)],
			ZipCode:          fmt.Sprintf("%05d", 10000+i),
			MaskedCardNumber: fmt.Sprintf("**** **** **** %04d", 1000+i),
			Amount:           decimal.NewFromInt(int64(10 * (i + 1))),
			Status:           payment.Statuses[i%len(payment.Statuses)],
			CreatedAt:        BaseTime.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

// PageOf slices records the way the gateway pages them.
func PageOf(records []payment.Payment, pageIndex, size int) *payment.Page {
	total := len(records)
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}

	start := min(pageIndex*size, total)
	end := min(start+size, total)
	content := append([]payment.Payment{}, records[start:end]...)

	return &payment.Page{
		Content:       content,
		Page:          pageIndex,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         pageIndex == 0,
		Last:          pageIndex >= totalPages-1,
	}
}

// PageRequest records one FetchPage call.
type PageRequest struct {
	PageIndex int
	Size      int
}

// StaticSource serves pages from memory. It records every call and can be
// made to fail.
type StaticSource struct {
	mu       sync.Mutex
	records  []payment.Payment
	err      error
	failPage map[int]error
	requests []PageRequest
}

// NewStaticSource creates a source over records.
func NewStaticSource(records []payment.Payment) *StaticSource {
	return &StaticSource{
		records:  records,
		failPage: make(map[int]error),
	}
}

// FetchPage implements pagination.PageFetcher.
func (s *StaticSource) FetchPage(ctx context.Context, pageIndex, size int) (*payment.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, PageRequest{PageIndex: pageIndex, Size: size})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.failPage[pageIndex]; ok {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return PageOf(s.records, pageIndex, size), nil
}

// SetError makes every following call fail with err. nil restores success.
func (s *StaticSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// FailPage makes calls for one page index fail with err.
func (s *StaticSource) FailPage(pageIndex int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPage[pageIndex] = err
}

// Requests returns the calls made so far.
func (s *StaticSource) Requests() []PageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PageRequest(nil), s.requests...)
}

// LastRequest returns the most recent call and false if there was none.
func (s *StaticSource) LastRequest() (PageRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return PageRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}
