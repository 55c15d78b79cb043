//go:build integration

package cache

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		client.Close()
		container.Terminate(ctx)
	})

	return client
}

func TestIntegration_StaleEntryRetainedForRevalidation(t *testing.T) {
	client := setupRedisContainer(t)
	manager := NewManager(client, WithStaleRetention(time.Minute))
	ctx := context.Background()

	header := http.Header{}
	header.Set("ETag", `"page-0"`)
	header.Set("Cache-Control", "max-age=1")
	entry := NewEntry(http.StatusOK, header, []byte(`{"content":[]}`), DefaultTTL)

	if err := manager.Set(ctx, pageKey("0"), entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	got, err := manager.Get(ctx, pageKey("0"))
	if err != nil {
		t.Fatalf("Get() error = %v, want stale entry", err)
	}
	if !got.IsExpired() {
		t.Error("entry should be expired after max-age")
	}

	ttl, err := client.TTL(ctx, pageKey("0").String()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 {
		t.Errorf("redis TTL = %v, want positive retention", ttl)
	}
}

func TestIntegration_StaleEntryWithoutValidatorsIsMiss(t *testing.T) {
	client := setupRedisContainer(t)
	manager := NewManager(client)
	ctx := context.Background()

	header := http.Header{}
	header.Set("Cache-Control", "max-age=1")
	entry := NewEntry(http.StatusOK, header, []byte(`{}`), DefaultTTL)

	if err := manager.Set(ctx, pageKey("1"), entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := manager.Get(ctx, pageKey("1")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}
