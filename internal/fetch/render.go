package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// Renderer loads pages in a headless Chromium so the returned HTML reflects
// the DOM after scripts ran.
type Renderer struct {
	// ShowUI disables headless mode.
	ShowUI   bool
	ProxyURL string
	// Timeout bounds the whole render. Zero means 30s.
	Timeout time.Duration
	// Settle is an extra wait after the load event for late scripts.
	Settle time.Duration
}

// Get renders url and returns the serialized document. The signature
// matches Client.Get so either can serve as a page loader.
func (r *Renderer) Get(ctx context.Context, target string) ([]byte, string, error) {
	u, err := url.Parse(target)
	if err != nil || !isHTTPScheme(u) {
		return nil, "", fmt.Errorf("unsupported URL: %q", target)
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	l := launcher.New().Headless(!r.ShowUI)
	if r.ProxyURL != "" {
		l = l.Proxy(r.ProxyURL)
	}
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, "", fmt.Errorf("launch browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, "", fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Debug().Err(err).Msg("browser close")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return nil, "", fmt.Errorf("open page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, "", fmt.Errorf("wait load: %w", err)
	}
	if r.Settle > 0 {
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(r.Settle):
		}
	}
	html, err := page.HTML()
	if err != nil {
		return nil, "", fmt.Errorf("serialize page: %w", err)
	}
	log.Debug().Str("url", target).Int("bytes", len(html)).Msg("rendered page")
	return []byte(html), "text/html; charset=utf-8", nil
}
