// Package testutil provides testing utilities for the PayNow client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MockResponse defines a canned gateway response for one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockGateway is an in-memory PayNow gateway served over httptest.
//
// Payments are listed in insertion order, newest first after CreatePayment.
// Listing responses carry an ETag derived from the page and the data version,
// so conditional requests receive 304 until the data changes.
type MockGateway struct {
	server *httptest.Server
	router chi.Router

	mu         sync.RWMutex
	payments   []payment.Payment
	webhooks   map[string]*payment.Webhook
	version    int
	maxAge     int
	overrides  map[string]func(w http.ResponseWriter, r *http.Request)
	pageDelays map[int]time.Duration

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
}

// NewMockGateway starts a gateway holding records.
func NewMockGateway(records []payment.Payment) *MockGateway {
	m := &MockGateway{
		payments:   append([]payment.Payment(nil), records...),
		webhooks:   make(map[string]*payment.Webhook),
		overrides:  make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pageDelays: make(map[int]time.Duration),
	}

	r := chi.NewRouter()
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", m.listPayments)
		r.Post("/", m.createPayment)
		r.Get("/{id}", m.getPayment)
	})
	r.Route("/webhooks", func(r chi.Router) {
		r.Get("/", m.listWebhooks)
		r.Post("/", m.registerWebhook)
		r.Get("/{id}", m.getWebhook)
		r.Delete("/{id}", m.deleteWebhook)
		r.Patch("/{id}/activate", m.setWebhookActive(true))
		r.Patch("/{id}/deactivate", m.setWebhookActive(false))
	})
	m.router = r

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.RequestCount++
		m.LastRequestHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			m.ConditionalCount++
		}
		handler, exists := m.overrides[r.URL.Path]
		m.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		m.router.ServeHTTP(w, r)
	}))

	return m
}

// URL returns the gateway base URL.
func (m *MockGateway) URL() string {
	return m.server.URL
}

// Close shuts down the gateway.
func (m *MockGateway) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
}

// SetHandler replaces the handler for an exact path.
func (m *MockGateway) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = handler
}

// ClearHandler restores the built-in handler for path.
func (m *MockGateway) ClearHandler(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, path)
}

// SetResponse configures a canned response for an exact path.
func (m *MockGateway) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetMaxAge sets the Cache-Control max-age sent with listing pages.
// Zero sends "no-cache" so every read revalidates.
func (m *MockGateway) SetMaxAge(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxAge = seconds
}

// SetPageDelay delays responses for one page index.
func (m *MockGateway) SetPageDelay(pageIndex int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageDelays[pageIndex] = d
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGateway) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockGateway) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockGateway) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Clone()
}

// Payments returns a copy of the stored payments.
func (m *MockGateway) Payments() []payment.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payment.Payment(nil), m.payments...)
}

func (m *MockGateway) listPayments(w http.ResponseWriter, r *http.Request) {
	pageIndex, err1 := intParam(r, "page", 0)
	size, err2 := intParam(r, "size", 10)
	if err1 != nil || err2 != nil || pageIndex < 0 || size <= 0 {
		WriteError(w, r, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	m.mu.RLock()
	delay := m.pageDelays[pageIndex]
	page := PageOf(m.payments, pageIndex, size)
	etag := fmt.Sprintf(`"v%d-p%d-s%d"`, m.version, pageIndex, size)
	maxAge := m.maxAge
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if maxAge > 0 {
		w.Header().Set("Cache-Control", "max-age="+strconv.Itoa(maxAge))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	w.Header().Set("ETag", etag)

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (m *MockGateway) createPayment(w http.ResponseWriter, r *http.Request) {
	var req payment.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p := payment.Payment{
		ID:               uuid.NewString(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		ZipCode:          req.ZipCode,
		MaskedCardNumber: MaskCard(req.CardNumber),
		Amount:           req.Amount,
		Status:           payment.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	m.mu.Lock()
	m.payments = append([]payment.Payment{p}, m.payments...)
	m.version++
	m.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (m *MockGateway) getPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	WriteError(w, r, http.StatusNotFound, "Payment not found with id: "+id)
}

func (m *MockGateway) listWebhooks(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	hooks := make([]payment.Webhook, 0, len(m.webhooks))
	for _, wh := range m.webhooks {
		hooks = append(hooks, *wh)
	}
	m.mu.RUnlock()

	writeJSON(w, http.StatusOK, hooks)
}

func (m *MockGateway) registerWebhook(w http.ResponseWriter, r *http.Request) {
	var req payment.RegisterWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EndpointURL == "" {
		WriteError(w, r, http.StatusBadRequest, "Endpoint URL is required")
		return
	}

	now := time.Now().UTC()
	wh := &payment.Webhook{
		ID:          uuid.NewString(),
		EndpointURL: req.EndpointURL,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.mu.Lock()
	for _, existing := range m.webhooks {
		if existing.EndpointURL == req.EndpointURL {
			m.mu.Unlock()
			WriteError(w, r, http.StatusConflict, "Webhook already registered for "+req.EndpointURL)
			return
		}
	}
	m.webhooks[wh.ID] = wh
	m.mu.Unlock()

	writeJSON(w, http.StatusCreated, wh)
}

func (m *MockGateway) getWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m.mu.RLock()
	wh, ok := m.webhooks[id]
	m.mu.RUnlock()
	if !ok {
		WriteError(w, r, http.StatusNotFound, "Webhook not found with id: "+id)
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

func (m *MockGateway) deleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m.mu.Lock()
	_, ok := m.webhooks[id]
	delete(m.webhooks, id)
	m.mu.Unlock()
	if !ok {
		WriteError(w, r, http.StatusNotFound, "Webhook not found with id: "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *MockGateway) setWebhookActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		m.mu.Lock()
		wh, ok := m.webhooks[id]
		if ok {
			wh.Active = active
			wh.UpdatedAt = time.Now().UTC()
		}
		var out payment.Webhook
		if ok {
			out = *wh
		}
		m.mu.Unlock()

		if !ok {
			WriteError(w, r, http.StatusNotFound, "Webhook not found with id: "+id)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// WriteError writes a gateway error body.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, payment.ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// MaskCard keeps the last four digits of a card number.
func MaskCard(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// NewServerErrorResponse creates a 500 response with a gateway message.
func NewServerErrorResponse(message string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       fmt.Sprintf(`{"status":500,"error":"Internal Server Error","message":%q}`, message),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewBadRequestResponse creates a 400 response with a gateway message.
func NewBadRequestResponse(message string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadRequest,
		Body:       fmt.Sprintf(`{"status":400,"error":"Bad Request","message":%q}`, message),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}
