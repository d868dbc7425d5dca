package app

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// newHTTPClient returns an HTTP client with bounded dial and handshake
// timeouts. proxyURL overrides the environment's proxy settings; timeout
// zero leaves the overall request unbounded.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	proxy := http.ProxyFromEnvironment
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			proxy = http.ProxyURL(u)
		} else {
			log.Warn().Err(err).Str("proxy", proxyURL).Msg("ignoring invalid proxy url")
		}
	}
	transport := &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
