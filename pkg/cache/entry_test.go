package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"expired entry", time.Now().Add(-1 * time.Hour), true},
		{"valid entry", time.Now().Add(1 * time.Hour), false},
		{"just expired", time.Now().Add(-1 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	entry := &Entry{Expires: time.Now().Add(-time.Minute)}
	if got := entry.TTL(); got != 0 {
		t.Errorf("TTL() of expired entry = %v, want 0", got)
	}

	entry = &Entry{Expires: time.Now().Add(5 * time.Minute)}
	if got := entry.TTL(); got < 4*time.Minute+59*time.Second || got > 5*time.Minute {
		t.Errorf("TTL() = %v, want about 5m", got)
	}
}

func TestNewEntry(t *testing.T) {
	lastMod := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	header := http.Header{}
	header.Set("ETag", `"v1"`)
	header.Set("Last-Modified", lastMod.Format(http.TimeFormat))
	header.Set("Cache-Control", "max-age=30")

	entry := NewEntry(http.StatusOK, header, []byte(`{"content":[]}`), DefaultTTL)

	if entry.ETag != `"v1"` {
		t.Errorf("ETag = %q, want %q", entry.ETag, `"v1"`)
	}
	if !entry.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastMod)
	}
	if ttl := entry.TTL(); ttl < 29*time.Second || ttl > 30*time.Second {
		t.Errorf("TTL() = %v, want about 30s from max-age", ttl)
	}
	if string(entry.Data) != `{"content":[]}` {
		t.Errorf("Data = %q", entry.Data)
	}

	// The header passed in must not alias the stored copy
	header.Set("ETag", `"v2"`)
	if entry.Headers.Get("ETag") != `"v1"` {
		t.Error("NewEntry() did not clone headers")
	}
}
