package payment

import (
	"fmt"
	"time"
)

// Page is one bounded batch of payments plus the gateway's pagination metadata.
// Page indices are zero-based, as on the wire.
type Page struct {
	Content       []Payment `json:"content"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalElements int       `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	First         bool      `json:"first"`
	Last          bool      `json:"last"`
}

// Validate checks the structural invariants of a decoded page.
func (p *Page) Validate() error {
	if p == nil {
		return fmt.Errorf("page cannot be nil")
	}
	if p.Size > 0 && len(p.Content) > p.Size {
		return fmt.Errorf("page holds %d records, size is %d", len(p.Content), p.Size)
	}
	if p.Page < 0 {
		return fmt.Errorf("negative page index %d", p.Page)
	}
	if p.TotalElements < 0 || p.TotalPages < 0 {
		return fmt.Errorf("negative totals (elements=%d, pages=%d)", p.TotalElements, p.TotalPages)
	}
	return nil
}

// Webhook is a registered notification endpoint.
type Webhook struct {
	ID          string    `json:"id"`
	EndpointURL string    `json:"endpointUrl"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RegisterWebhookRequest is the body of POST /webhooks.
type RegisterWebhookRequest struct {
	EndpointURL string `json:"endpointUrl"`
}

// ErrorResponse is the body the gateway sends with non-2xx responses.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}
