package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagedigest/internal/cache"
)

// DefaultMaxBodyBytes bounds a page download.
const DefaultMaxBodyBytes = 16 << 20

// ErrStatus is wrapped by errors for non-2xx page responses.
var ErrStatus = errors.New("unexpected status")

// Client wraps http.Client and provides timeouts and limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for HTTP GET bodies and headers.
	Cache *cache.HTTPCache
	// If true, bypass cache entirely and fetch fresh (no conditional headers),
	// but still save the latest response to cache.
	BypassCache bool
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int
	// MaxBodyBytes caps the downloaded body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET with context, user-agent, and bounded retry for transient
// errors. The returned body is UTF-8 regardless of the page's declared charset.
func (c *Client) Get(ctx context.Context, url string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, url); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, url, etag, lastMod)
		if err == nil {
			if res.status == http.StatusNotModified {
				if c.Cache != nil {
					if cached, err := c.Cache.LoadBody(ctx, url); err == nil {
						log.Debug().Str("url", url).Msg("page not modified; using cache")
						return cached, res.contentType, nil
					}
				}
				// Cache lost its body; refetch without validators.
				res, err = c.tryOnce(ctx, url, "", "")
				if err != nil {
					return nil, "", err
				}
			}
			body := DecodeHTML(res.body, res.contentType)
			if c.Cache != nil && res.status == http.StatusOK {
				if err := c.Cache.Save(ctx, url, res.contentType, res.etag, res.lastModified, body); err != nil {
					log.Warn().Err(err).Str("url", url).Msg("page cache save failed")
				}
			}
			return body, res.contentType, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			return nil, "", err
		}
		log.Debug().Err(err).Str("url", url).Int("attempt", i+1).Msg("retrying page fetch")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, "", lastErr
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

type serverError struct{ status int }

func (e serverError) Error() string { return fmt.Sprintf("server error: %d", e.status) }

func (c *Client) tryOnce(ctx context.Context, url string, etag string, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.String())
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	switch {
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return response{status: resp.StatusCode}, serverError{status: resp.StatusCode}
	case resp.StatusCode == http.StatusNotModified:
		return response{contentType: ct, status: resp.StatusCode}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return response{status: resp.StatusCode}, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	if !isAllowedHTMLContentType(ct) {
		return response{status: resp.StatusCode}, fmt.Errorf("unsupported content type: %s", ct)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("read body: %w", err)
	}
	return response{
		body:         b,
		contentType:  ct,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}, nil
}

func isTransient(err error) bool {
	// Treat HTTP 5xx and context deadline as transient.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se serverError
	return errors.As(err, &se)
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	// An absent header is common on static hosts; let the HTML parser decide.
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
