package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/hyperifyio/pagedigest/internal/fetch"
)

// ErrHTTPCacheMiss is returned in cache-only mode for pages never fetched.
var ErrHTTPCacheMiss = errors.New("page not in cache")

// load reads a page from stdin ("-"), a local file, or a URL. Bare host
// names get an https:// scheme. It returns the body and the page URL, which
// is empty for stdin and files.
func (a *App) load(ctx context.Context, source string) ([]byte, string, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return nil, "", errors.New("no source given")
	case source == "-":
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return fetch.DecodeHTML(b, ""), "", nil
	}
	if _, err := os.Stat(source); err == nil {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", source, err)
		}
		return fetch.DecodeHTML(b, ""), "", nil
	}
	target := normalizeURL(source)
	if a.cfg.HTTPCacheOnly {
		if a.httpCache == nil {
			return nil, "", ErrHTTPCacheMiss
		}
		b, err := a.httpCache.LoadBody(ctx, target)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrHTTPCacheMiss, target)
		}
		return b, target, nil
	}
	b, _, err := a.loader.Get(ctx, target)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", target, err)
	}
	return b, target, nil
}

// normalizeURL adds https:// when source has no scheme.
func normalizeURL(source string) string {
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		return source
	}
	return "https://" + strings.TrimPrefix(source, "//")
}
