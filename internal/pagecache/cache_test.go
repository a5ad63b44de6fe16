package pagecache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache := New(dir, 0)

	t.Run("missing entry", func(t *testing.T) {
		_, ok, err := cache.Get("seniores_main")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok {
			t.Error("Get() on empty cache should miss")
		}
	})

	t.Run("set creates directory and get returns content", func(t *testing.T) {
		content := "<div id=\"matches\">Olhão</div>"
		if err := cache.Set("seniores_main", content); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "seniores_main.html")); err != nil {
			t.Fatalf("expected <key>.html file: %v", err)
		}

		got, ok, err := cache.Get("seniores_main")
		if err != nil || !ok {
			t.Fatalf("Get() = _, %v, %v; want hit", ok, err)
		}
		if got != content {
			t.Errorf("Get() = %q, want %q", got, content)
		}
	})
}

func TestCacheTTL(t *testing.T) {
	dir := t.TempDir()
	cache := New(dir, time.Hour)

	if err := cache.Set("fresh", "a"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Set("stale", "b"); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(cache.Path("stale"), old, old); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := cache.Get("stale"); ok {
		t.Error("expired entry should miss")
	}
	if _, ok, _ := cache.Get("fresh"); !ok {
		t.Error("fresh entry should hit")
	}

	removed, err := cache.CleanExpired()
	if err != nil {
		t.Fatalf("CleanExpired() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("CleanExpired() removed %d, want 1", removed)
	}
	if _, err := os.Stat(cache.Path("stale")); !os.IsNotExist(err) {
		t.Error("stale entry should be deleted")
	}
}

func TestCleanExpiredWithoutTTL(t *testing.T) {
	cache := New(filepath.Join(t.TempDir(), "absent"), 0)
	removed, err := cache.CleanExpired()
	if err != nil || removed != 0 {
		t.Errorf("CleanExpired() = %d, %v; want 0, nil", removed, err)
	}
}

func TestPathSanitizesKey(t *testing.T) {
	cache := New("cache", 0)
	got := cache.Path("../etc/passwd")
	want := filepath.Join("cache", "_etc_passwd.html")
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
