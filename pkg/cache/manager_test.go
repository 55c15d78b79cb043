package cache

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis on DB 15 and skips when none is running.
// manager_integration_test.go covers the same paths against a container.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func pageKey(page string) Key {
	return Key{Endpoint: "/payments", QueryParams: url.Values{"page": []string{page}, "size": []string{"10"}}}
}

func TestNewManager(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	manager := NewManager(client, WithDefaultTTL(3*time.Second), WithStaleRetention(time.Minute))
	if manager.redis != client {
		t.Error("Manager redis client not set correctly")
	}
	if manager.DefaultTTL() != 3*time.Second {
		t.Errorf("DefaultTTL() = %v, want 3s", manager.DefaultTTL())
	}
	if manager.staleRetention != time.Minute {
		t.Errorf("staleRetention = %v, want 1m", manager.staleRetention)
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestManager_SetAndGet(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	entry := &Entry{
		Data:       []byte(`{"content":[],"page":0}`),
		ETag:       `"abc123"`,
		Expires:    time.Now().Add(time.Minute),
		StatusCode: 200,
		CachedAt:   time.Now(),
	}

	if err := manager.Set(ctx, pageKey("0"), entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := manager.Get(ctx, pageKey("0"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got.Data) != string(entry.Data) {
		t.Errorf("Data = %s, want %s", got.Data, entry.Data)
	}
	if got.ETag != entry.ETag {
		t.Errorf("ETag = %s, want %s", got.ETag, entry.ETag)
	}
}

func TestManager_GetMiss(t *testing.T) {
	manager := NewManager(setupTestRedis(t))

	_, err := manager.Get(context.Background(), pageKey("9"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetExpiredIsNoop(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	entry := &Entry{Data: []byte("x"), Expires: time.Now().Add(-time.Second)}
	if err := manager.Set(ctx, pageKey("0"), entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := manager.Get(ctx, pageKey("0")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetExpiredWithValidatorKept(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	entry := &Entry{Data: []byte("x"), ETag: `"v1"`, Expires: time.Now()}
	if err := manager.Set(ctx, pageKey("0"), entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := manager.Get(ctx, pageKey("0"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.IsExpired() || got.ETag != `"v1"` {
		t.Errorf("Get() = %+v, want stale entry with its ETag", got)
	}
}

func TestManager_DeleteEndpoint(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	for _, p := range []string{"0", "1", "2"} {
		entry := &Entry{Data: []byte(p), Expires: time.Now().Add(time.Minute)}
		if err := manager.Set(ctx, pageKey(p), entry); err != nil {
			t.Fatalf("Set(page=%s) error = %v", p, err)
		}
	}
	other := Key{Endpoint: "/webhooks"}
	if err := manager.Set(ctx, other, &Entry{Data: []byte("w"), Expires: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("Set(webhooks) error = %v", err)
	}

	n, err := manager.DeleteEndpoint(ctx, "/payments")
	if err != nil {
		t.Fatalf("DeleteEndpoint() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteEndpoint() deleted %d keys, want 3", n)
	}
	if _, err := manager.Get(ctx, pageKey("1")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("page 1 still cached: %v", err)
	}
	if _, err := manager.Get(ctx, other); err != nil {
		t.Errorf("webhooks entry should survive, got %v", err)
	}
}

func TestManager_Refresh(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	stale := &Entry{
		Data:    []byte("body"),
		ETag:    `"v1"`,
		Expires: time.Now().Add(-time.Second),
	}

	header := make(map[string][]string)
	header["Cache-Control"] = []string{"max-age=60"}
	if err := manager.Refresh(ctx, pageKey("0"), stale, header); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	got, err := manager.Get(ctx, pageKey("0"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.IsExpired() {
		t.Error("refreshed entry should be fresh")
	}
	if !stale.IsExpired() {
		t.Error("Refresh() must not modify the entry passed in")
	}
}
