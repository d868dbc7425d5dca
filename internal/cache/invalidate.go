package cache

import (
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if err := os.RemoveAll(dir); err != nil {
        return err
    }
    return os.MkdirAll(dir, 0o755)
}

// PurgeHTTPCacheByAge removes page cache entries older than maxAge.
// It inspects <key>.meta.json for SavedAt timestamp and deletes both meta and
// corresponding <key>.body when expired.
func PurgeHTTPCacheByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := walkFiles(dir, func(path string, d fs.DirEntry) {
        if !strings.HasSuffix(d.Name(), ".meta.json") {
            return
        }
        b, err := os.ReadFile(path)
        if err != nil {
            return
        }
        var e HTTPEntry
        if err := json.Unmarshal(b, &e); err != nil {
            return
        }
        if now.Sub(e.SavedAt) <= maxAge {
            return
        }
        removed++
        _ = os.Remove(path)
        _ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
    })
    return removed, err
}

// PurgeResponseCacheByAge removes response cache entries older than maxAge
// based on file modification time.
func PurgeResponseCacheByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := walkFiles(dir, func(path string, d fs.DirEntry) {
        if !isResponseFile(d.Name()) {
            return
        }
        info, err := d.Info()
        if err != nil || now.Sub(info.ModTime().UTC()) <= maxAge {
            return
        }
        removed++
        _ = os.Remove(path)
    })
    return removed, err
}

// EnforceHTTPCacheLimits evicts least recently used pages until the cache
// holds at most maxCount entries and maxBytes of bodies. Zero disables a limit.
func EnforceHTTPCacheLimits(dir string, maxBytes int64, maxCount int) (int, error) {
    entries, err := collect(dir, func(name string) bool { return strings.HasSuffix(name, ".body") })
    if err != nil {
        return 0, err
    }
    return evict(entries, maxBytes, maxCount, func(path string) {
        _ = os.Remove(path)
        _ = os.Remove(strings.TrimSuffix(path, ".body") + ".meta.json")
    }), nil
}

// EnforceResponseCacheLimits is EnforceHTTPCacheLimits for response entries.
func EnforceResponseCacheLimits(dir string, maxBytes int64, maxCount int) (int, error) {
    entries, err := collect(dir, isResponseFile)
    if err != nil {
        return 0, err
    }
    return evict(entries, maxBytes, maxCount, func(path string) { _ = os.Remove(path) }), nil
}

func isResponseFile(name string) bool {
    return strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".meta.json")
}

type fileEntry struct {
    path    string
    size    int64
    modTime time.Time
}

func walkFiles(dir string, fn func(path string, d fs.DirEntry)) error {
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if !d.IsDir() {
            fn(path, d)
        }
        return nil
    })
    if errors.Is(err, fs.ErrNotExist) {
        return nil
    }
    return err
}

func collect(dir string, match func(name string) bool) ([]fileEntry, error) {
    var out []fileEntry
    err := walkFiles(dir, func(path string, d fs.DirEntry) {
        if !match(d.Name()) {
            return
        }
        info, err := d.Info()
        if err != nil {
            return
        }
        out = append(out, fileEntry{path: path, size: info.Size(), modTime: info.ModTime()})
    })
    return out, err
}

// evict removes oldest entries first until both limits hold.
func evict(entries []fileEntry, maxBytes int64, maxCount int, remove func(path string)) int {
    sort.Slice(entries, func(i, j int) bool { return entries[i].modTime.Before(entries[j].modTime) })
    var total int64
    for _, e := range entries {
        total += e.size
    }
    count := len(entries)
    removed := 0
    for _, e := range entries {
        overCount := maxCount > 0 && count > maxCount
        overBytes := maxBytes > 0 && total > maxBytes
        if !overCount && !overBytes {
            break
        }
        remove(e.path)
        count--
        total -= e.size
        removed++
    }
    return removed
}
