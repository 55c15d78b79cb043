package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sternrassler/paynow-client/pkg/payment"
)

const paymentsPath = "/payments"

// ListPayments fetches one page of payments. pageIndex is zero-based.
func (c *Client) ListPayments(ctx context.Context, pageIndex, size int) (*payment.Page, error) {
	if pageIndex < 0 {
		return nil, fmt.Errorf("page index must be >= 0 (got %d)", pageIndex)
	}
	if size <= 0 {
		return nil, fmt.Errorf("page size must be > 0 (got %d)", size)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(pageIndex))
	query.Set("size", strconv.Itoa(size))

	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      paymentsPath,
		route:     paymentsPath,
		query:     query,
		cacheable: true,
		validate:  validPageBody,
	})
	if err != nil {
		return nil, err
	}

	var page payment.Page
	if err := decodeJSON(resp, paymentsPath, &page); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Path:       paymentsPath,
			Err:        fmt.Errorf("malformed page: %w", err),
		}
	}

	return &page, nil
}

// validPageBody accepts only bodies that ListPayments can return as a page.
func validPageBody(body []byte) error {
	var page payment.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return fmt.Errorf("decode page: %w", err)
	}
	return page.Validate()
}

// FetchPage implements pagination.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, pageIndex, size int) (*payment.Page, error) {
	return c.ListPayments(ctx, pageIndex, size)
}

// GetPayment fetches a single payment by id.
func (c *Client) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	if id == "" {
		return nil, fmt.Errorf("payment id is required")
	}

	path := paymentsPath + "/" + url.PathEscape(id)
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		route:  paymentsPath + "/{id}",
	})
	if err != nil {
		return nil, err
	}

	var p payment.Payment
	if err := decodeJSON(resp, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayment submits a new payment and invalidates cached listing pages.
func (c *Client) CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (*payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payment request: %w", err)
	}

	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   paymentsPath,
		route:  paymentsPath,
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if n, err := c.cache.DeleteEndpoint(ctx, paymentsPath); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to invalidate cached payment pages")
		} else {
			c.logger.Debug().Int("keys", n).Msg("Invalidated cached payment pages")
		}
	}

	var p payment.Payment
	if err := decodeJSON(resp, paymentsPath, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
