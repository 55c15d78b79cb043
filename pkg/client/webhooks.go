package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Sternrassler/paynow-client/pkg/payment"
)

const webhooksPath = "/webhooks"

// RegisterWebhook registers a new notification endpoint.
// The URL must start with http:// or https://.
func (c *Client) RegisterWebhook(ctx context.Context, endpointURL string) (*payment.Webhook, error) {
	if !strings.HasPrefix(endpointURL, "http://") && !strings.HasPrefix(endpointURL, "https://") {
		return nil, fmt.Errorf("webhook url must start with http:// or https:// (got %q)", endpointURL)
	}

	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   webhooksPath,
		route:  webhooksPath,
		body:   payment.RegisterWebhookRequest{EndpointURL: endpointURL},
	})
	if err != nil {
		return nil, err
	}

	var wh payment.Webhook
	if err := decodeJSON(resp, webhooksPath, &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}

// ListWebhooks returns every registered webhook.
func (c *Client) ListWebhooks(ctx context.Context) ([]payment.Webhook, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   webhooksPath,
		route:  webhooksPath,
	})
	if err != nil {
		return nil, err
	}

	var hooks []payment.Webhook
	if err := decodeJSON(resp, webhooksPath, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// GetWebhook fetches one webhook by id.
func (c *Client) GetWebhook(ctx context.Context, id string) (*payment.Webhook, error) {
	return c.webhookCall(ctx, http.MethodGet, id, "")
}

// DeleteWebhook removes a webhook.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("webhook id is required")
	}
	path := webhooksPath + "/" + url.PathEscape(id)
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   path,
		route:  webhooksPath + "/{id}",
	})
	return err
}

// ActivateWebhook enables deliveries to a webhook.
func (c *Client) ActivateWebhook(ctx context.Context, id string) (*payment.Webhook, error) {
	return c.webhookCall(ctx, http.MethodPatch, id, "/activate")
}

// DeactivateWebhook pauses deliveries to a webhook.
func (c *Client) DeactivateWebhook(ctx context.Context, id string) (*payment.Webhook, error) {
	return c.webhookCall(ctx, http.MethodPatch, id, "/deactivate")
}

func (c *Client) webhookCall(ctx context.Context, method, id, action string) (*payment.Webhook, error) {
	if id == "" {
		return nil, fmt.Errorf("webhook id is required")
	}

	path := webhooksPath + "/" + url.PathEscape(id) + action
	resp, err := c.do(ctx, request{
		method: method,
		path:   path,
		route:  webhooksPath + "/{id}" + action,
	})
	if err != nil {
		return nil, err
	}

	var wh payment.Webhook
	if err := decodeJSON(resp, path, &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}
