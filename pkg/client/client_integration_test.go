//go:build integration

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/paynow-client/internal/testutil"
	"github.com/Sternrassler/paynow-client/pkg/breaker"
	"github.com/Sternrassler/paynow-client/pkg/cache"
	"github.com/Sternrassler/paynow-client/pkg/pagination"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_FullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	gw := testutil.NewMockGateway(testutil.Payments(23))
	defer gw.Close()
	gw.SetMaxAge(1)

	cfg := DefaultConfig(gw.URL())
	cfg.Redis = redisClient
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	// Phase 1: cache miss, full response stored
	page, err := c.ListPayments(ctx, 0, 10)
	if err != nil {
		t.Fatalf("First request failed: %v", err)
	}
	if page.TotalElements != 23 {
		t.Errorf("TotalElements = %d, want 23", page.TotalElements)
	}
	if gw.GetRequestCount() != 1 {
		t.Errorf("Expected 1 request, got %d", gw.GetRequestCount())
	}

	key := cache.Key{Endpoint: "/payments", QueryParams: map[string][]string{"page": {"0"}, "size": {"10"}}}
	entry, err := c.Cache().Get(ctx, key)
	if err != nil {
		t.Fatalf("Expected cached entry, got %v", err)
	}
	if entry.ETag == "" {
		t.Error("Cached entry has no ETag")
	}

	// Phase 2: fresh hit, no request
	if _, err := c.ListPayments(ctx, 0, 10); err != nil {
		t.Fatalf("Second request failed: %v", err)
	}
	if gw.GetRequestCount() != 1 {
		t.Errorf("Expected cache hit, got %d requests", gw.GetRequestCount())
	}

	// Phase 3: expired, revalidated with If-None-Match
	time.Sleep(1500 * time.Millisecond)
	page, err = c.ListPayments(ctx, 0, 10)
	if err != nil {
		t.Fatalf("Third request failed: %v", err)
	}
	if gw.GetConditionalCount() != 1 {
		t.Errorf("Expected 1 conditional request, got %d", gw.GetConditionalCount())
	}
	if len(page.Content) != 10 {
		t.Errorf("len(Content) = %d, want 10 from the revalidated entry", len(page.Content))
	}
}

func TestIntegration_ControllerOverCachedClient(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	gw := testutil.NewMockGateway(testutil.Payments(23))
	defer gw.Close()
	gw.SetMaxAge(60)

	cfg := DefaultConfig(gw.URL())
	cfg.Redis = redisClient
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	ctrl := pagination.NewController(c)
	ctx := context.Background()

	if err := ctrl.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := ctrl.ChangePage(ctx, 3); err != nil {
		t.Fatalf("ChangePage(3) error = %v", err)
	}
	if _, err := ctrl.ChangePage(ctx, 1); err != nil {
		t.Fatalf("ChangePage(1) error = %v", err)
	}

	// Page 1 came from the cache the second time.
	if n := gw.GetRequestCount(); n != 2 {
		t.Errorf("RequestCount = %d, want 2", n)
	}

	snap := ctrl.Snapshot()
	if snap.State.CurrentPage != 1 || len(snap.Visible) != 10 {
		t.Errorf("snapshot = page %d with %d rows", snap.State.CurrentPage, len(snap.Visible))
	}
}

func TestIntegration_BreakerBlocksOtherClient(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	gw := testutil.NewMockGateway(testutil.Payments(5))
	defer gw.Close()

	ctx := context.Background()

	// Another instance already exhausted the shared budget.
	redisClient.Set(ctx, breaker.RedisKeyFailures, breaker.DefaultOpenThreshold, time.Minute)

	cfg := DefaultConfig(gw.URL())
	cfg.Redis = redisClient
	bc := breaker.DefaultConfig()
	cfg.Breaker = &bc
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	_, err = c.ListPayments(ctx, 0, 10)
	if !errors.Is(err, breaker.ErrOpen) {
		t.Fatalf("error = %v, want breaker.ErrOpen", err)
	}
	if gw.GetRequestCount() != 0 {
		t.Errorf("gateway requests = %d, want 0 (blocked)", gw.GetRequestCount())
	}
}

func TestIntegration_MetricsIncremented(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	gw := testutil.NewMockGateway(testutil.Payments(5))
	defer gw.Close()
	gw.SetMaxAge(60)

	cfg := DefaultConfig(gw.URL())
	cfg.Redis = redisClient
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	hitsBefore := promtestutil.ToFloat64(cache.CacheHits.WithLabelValues("redis"))
	okBefore := promtestutil.ToFloat64(requestsTotal.WithLabelValues(paymentsPath, "200"))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.ListPayments(ctx, 0, 5); err != nil {
			t.Fatalf("ListPayments() error = %v", err)
		}
	}

	if d := promtestutil.ToFloat64(requestsTotal.WithLabelValues(paymentsPath, "200")) - okBefore; d != 1 {
		t.Errorf("200 responses counted = %v, want 1", d)
	}
	if d := promtestutil.ToFloat64(cache.CacheHits.WithLabelValues("redis")) - hitsBefore; d != 1 {
		t.Errorf("cache hits counted = %v, want 1", d)
	}
}
