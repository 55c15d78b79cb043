// Package payment defines the records exchanged with the PayNow gateway:
// payments, listing pages, webhooks and the gateway error body.
package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the processing state of a payment.
type Status string

const (
	// StatusPending is a payment accepted but not yet settled.
	StatusPending Status = "PENDING"

	// StatusProcessed is a payment the gateway settled successfully.
	StatusProcessed Status = "PROCESSED"

	// StatusFailed is a payment the gateway rejected.
	StatusFailed Status = "FAILED"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusProcessed, StatusPending, StatusFailed}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusFailed:
		return true
	default:
		return false
	}
}

// ParseStatus converts a wire value into a Status. Matching is case-sensitive.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown payment status %q", v)
	}
	return s, nil
}

// Payment is a single payment transaction as returned by the gateway.
// Values are treated as immutable once decoded.
type Payment struct {
	ID               string          `json:"id"`
	FirstName        string          `json:"firstName"`
	LastName         string          `json:"lastName"`
	ZipCode          string          `json:"zipCode"`
	MaskedCardNumber string          `json:"maskedCardNumber"`
	Amount           decimal.Decimal `json:"amount"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// FullName returns "first last".
func (p Payment) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ShortID returns the first eight characters of the identifier.
func (p Payment) ShortID() string {
	n := 0
	for i := range p.ID {
		if n == 8 {
			return p.ID[:i]
		}
		n++
	}
	return p.ID
}

// CreatePaymentRequest is the body of POST /payments.
type CreatePaymentRequest struct {
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	ZipCode    string          `json:"zipCode"`
	CardNumber string          `json:"cardNumber"`
	Amount     decimal.Decimal `json:"amount"`
}

// Validate checks the request before it is sent.
func (r CreatePaymentRequest) Validate() error {
	switch {
	case r.FirstName == "":
		return fmt.Errorf("first name is required")
	case r.LastName == "":
		return fmt.Errorf("last name is required")
	case r.ZipCode == "":
		return fmt.Errorf("zip code is required")
	case r.CardNumber == "":
		return fmt.Errorf("card number is required")
	case !r.Amount.IsPositive():
		return fmt.Errorf("amount must be greater than zero (got %s)", r.Amount.String())
	}
	return nil
}
