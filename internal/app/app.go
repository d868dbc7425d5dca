// Package app wires page loading, extraction and summarization into the
// operations the command line exposes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagedigest/internal/cache"
	"github.com/hyperifyio/pagedigest/internal/extract"
	"github.com/hyperifyio/pagedigest/internal/fetch"
	"github.com/hyperifyio/pagedigest/internal/host"
	"github.com/hyperifyio/pagedigest/internal/llm"
	"github.com/hyperifyio/pagedigest/internal/ragclient"
	"github.com/hyperifyio/pagedigest/internal/summarize"
)

// Page is an extracted, cleaned article.
type Page struct {
	Source             string  `json:"source"`
	Title              string  `json:"title,omitempty"`
	Text               string  `json:"text"`
	Method             string  `json:"method"`
	Length             int     `json:"length"`
	Language           string  `json:"language,omitempty"`
	LanguageConfidence float64 `json:"language_confidence,omitempty"`
}

type App struct {
	cfg       Config
	loader    host.PageLoader
	extractor extract.Extractor
	backend   summarize.Backend
	httpCache *cache.HTTPCache

	stdin  io.Reader
	stdout io.Writer
}

// ErrNotEnoughContent is returned when a page fails the readable-content gate.
var ErrNotEnoughContent = extract.ErrNotEnoughContent

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{
		cfg:       cfg,
		extractor: extract.ForStrategy(cfg.Strategy),
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}

	var respCache *cache.ResponseCache
	if cfg.CacheDir != "" {
		prepareCache(cfg)
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		respCache = &cache.ResponseCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	if cfg.Render {
		a.loader = &fetch.Renderer{ShowUI: cfg.RenderShowUI, ProxyURL: cfg.ProxyURL, Timeout: cfg.FetchTimeout}
	} else {
		a.loader = &fetch.Client{
			HTTPClient:        newHTTPClient(cfg.ProxyURL, cfg.FetchTimeout),
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: cfg.FetchTimeout,
			Cache:             a.httpCache,
			RedirectMaxHops:   5,
			MaxConcurrent:     4,
		}
	}

	switch strings.ToLower(cfg.Backend) {
	case BackendDirect:
		a.backend = &summarize.Direct{
			Client:       llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey, newHTTPClient("", 5*time.Minute)),
			Model:        cfg.LLMModel,
			Cache:        respCache,
			LanguageHint: cfg.LanguageHint,
			CacheOnly:    cfg.LLMCacheOnly,
		}
	default:
		a.backend = &summarize.Remote{
			Client: &ragclient.Client{BaseURL: cfg.ServerURL, HTTPClient: newHTTPClient("", 2*time.Minute), UserAgent: cfg.UserAgent},
			APIKey: cfg.APIKey,
		}
	}
	log.Debug().Str("backend", a.backend.Name()).Str("strategy", cfg.Strategy).Bool("render", cfg.Render).Msg("app ready")
	return a, nil
}

// SetIO replaces the reader used for "-" sources and the writer reports go
// to when no output path is set.
func (a *App) SetIO(in io.Reader, out io.Writer) {
	a.stdin = in
	a.stdout = out
}

// prepareCache applies the cache invalidation controls. Failures are logged
// and never stop startup.
func prepareCache(cfg Config) {
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Msg("cache clear failed")
		}
	}
	if cfg.CacheMaxAge > 0 {
		n1, _ := cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
		n2, _ := cache.PurgeResponseCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
		log.Debug().Int("pages", n1).Int("responses", n2).Msg("purged stale cache entries")
	}
	if cfg.CacheMaxBytes > 0 || cfg.CacheMaxCount > 0 {
		_, _ = cache.EnforceHTTPCacheLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount)
		_, _ = cache.EnforceResponseCacheLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount)
	}
}

// Extract loads source and returns its readable article text.
func (a *App) Extract(ctx context.Context, source string) (Page, error) {
	body, pageURL, err := a.load(ctx, source)
	if err != nil {
		return Page{}, err
	}
	doc := a.extractor.Extract(body, pageURL)
	text, err := extract.Readable(extract.Result{Text: doc.Text, Method: doc.Method})
	if err != nil {
		log.Warn().Str("source", source).Str("method", doc.Method).Msg("not enough readable content")
		return Page{Source: source, Title: doc.Title, Method: doc.Method}, err
	}
	p := Page{
		Source: source,
		Title:  doc.Title,
		Text:   text,
		Method: doc.Method,
		Length: utf8.RuneCountInString(text),
	}
	p.Language, p.LanguageConfidence = detectLanguage(text)
	log.Info().Str("source", source).Str("method", p.Method).Int("length", p.Length).Str("lang", p.Language).Msg("extracted article")
	return p, nil
}

// Summarize extracts source and summarizes it with the configured backend.
func (a *App) Summarize(ctx context.Context, source string, kind summarize.Kind) (Report, error) {
	page, err := a.Extract(ctx, source)
	if err != nil {
		return Report{Page: page}, err
	}
	sum, err := a.backend.Summarize(ctx, page.Text, kind)
	if err != nil {
		return Report{Page: page}, err
	}
	return Report{Page: page, Kind: string(kind), Summary: sum.Text, TookSeconds: sum.Took.Seconds()}, nil
}

// Health reports whether the configured backend can serve requests.
func (a *App) Health(ctx context.Context) (summarize.Health, error) {
	return a.backend.Health(ctx)
}

// Host serves native messaging requests on in/out until in closes.
func (a *App) Host(ctx context.Context, in io.Reader, out io.Writer) error {
	h := &host.Handler{Extractor: a.extractor, Loader: a.loader}
	return host.Serve(ctx, in, out, h)
}

// APIKeyProbeText is summarized to prove a key works.
const APIKeyProbeText = "This is a test article to validate the API key functionality."

// ErrAPIKeyFormat rejects keys that cannot be Gemini API keys.
var ErrAPIKeyFormat = errors.New("not a valid Gemini API key (should start with 'AIza')")

// CheckAPIKey validates the key's shape and then asks the service for a
// brief summary with it.
func (a *App) CheckAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, "AIza") || len(key) < 30 {
		return ErrAPIKeyFormat
	}
	rc := &ragclient.Client{BaseURL: a.cfg.ServerURL, HTTPClient: newHTTPClient("", time.Minute), UserAgent: a.cfg.UserAgent}
	if _, err := rc.Summarize(ctx, ragclient.SummarizeRequest{Text: APIKeyProbeText, SummaryType: string(summarize.Brief), APIKey: key}); err != nil {
		return fmt.Errorf("API key validation failed: %w", err)
	}
	return nil
}
