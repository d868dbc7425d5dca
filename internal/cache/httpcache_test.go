package cache

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "testing"
    "time"
)

func TestHTTPCache_SaveLoad(t *testing.T) {
    c := &HTTPCache{Dir: t.TempDir()}
    url := "https://example.com/story"
    if err := c.Save(context.Background(), url, "text/html", `"v1"`, "Mon, 02 Jan 2006 15:04:05 GMT", []byte("<html></html>")); err != nil {
        t.Fatalf("save: %v", err)
    }
    meta, err := c.LoadMeta(context.Background(), url)
    if err != nil {
        t.Fatalf("load meta: %v", err)
    }
    if meta.ETag != `"v1"` || meta.URL != url || meta.SavedAt.IsZero() {
        t.Fatalf("unexpected meta: %+v", meta)
    }
    body, err := c.LoadBody(context.Background(), url)
    if err != nil || string(body) != "<html></html>" {
        t.Fatalf("body=%q err=%v", body, err)
    }
    if _, err := c.LoadBody(context.Background(), "https://example.com/other"); err == nil {
        t.Fatalf("expected miss for unknown url")
    }
}

func TestHTTPCache_LRUEnforcement_Count(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    c := &HTTPCache{Dir: dir}
    urls := []string{"https://a.com/1", "https://a.com/2", "https://a.com/3"}
    for i, u := range urls {
        if err := c.Save(context.Background(), u, "text/html", "", "", []byte(fmt.Sprintf("body-%d", i))); err != nil {
            t.Fatalf("save %d: %v", i, err)
        }
        time.Sleep(10 * time.Millisecond)
    }
    // Touch the first so the second becomes the oldest
    if _, err := c.LoadBody(context.Background(), urls[0]); err != nil {
        t.Fatalf("touch body: %v", err)
    }
    removed, err := EnforceHTTPCacheLimits(dir, 0, 2)
    if err != nil { t.Fatalf("enforce: %v", err) }
    if removed != 1 { t.Fatalf("expected 1 removed, got %d", removed) }
    if _, err := c.LoadBody(context.Background(), urls[1]); err == nil {
        t.Fatalf("expected least recently used entry evicted")
    }
    if _, err := c.LoadMeta(context.Background(), urls[1]); err == nil {
        t.Fatalf("expected meta of evicted entry removed")
    }
}

func TestPurgeHTTPCacheByAge(t *testing.T) {
    dir := t.TempDir()
    c := &HTTPCache{Dir: dir}
    if err := c.Save(context.Background(), "https://old.example", "text/html", "", "", []byte("x")); err != nil {
        t.Fatalf("save: %v", err)
    }
    // Rewrite SavedAt into the past
    key := c.key("https://old.example")
    old := []byte(`{"url":"https://old.example","saved_at":"2000-01-01T00:00:00Z"}`)
    if err := os.WriteFile(filepath.Join(dir, key+".meta.json"), old, 0o644); err != nil {
        t.Fatalf("rewrite meta: %v", err)
    }
    removed, err := PurgeHTTPCacheByAge(dir, time.Hour)
    if err != nil || removed != 1 {
        t.Fatalf("removed=%d err=%v", removed, err)
    }
    if _, err := os.Stat(filepath.Join(dir, key+".body")); !os.IsNotExist(err) {
        t.Fatalf("expected body removed, stat err=%v", err)
    }
}

func TestClearDir(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "c")
    c := &ResponseCache{Dir: dir}
    if err := c.Save(context.Background(), KeyFrom("a"), []byte("1")); err != nil {
        t.Fatalf("save: %v", err)
    }
    if err := ClearDir(dir); err != nil {
        t.Fatalf("clear: %v", err)
    }
    entries, err := os.ReadDir(dir)
    if err != nil || len(entries) != 0 {
        t.Fatalf("expected empty dir, entries=%d err=%v", len(entries), err)
    }
    if err := ClearDir("  "); err == nil {
        t.Fatalf("expected error for blank dir")
    }
}

func TestEnforceLimits_MissingDir(t *testing.T) {
    removed, err := EnforceHTTPCacheLimits(filepath.Join(t.TempDir(), "missing"), 1, 1)
    if err != nil || removed != 0 {
        t.Fatalf("removed=%d err=%v", removed, err)
    }
}
