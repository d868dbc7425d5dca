package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Summarization service
	ServerURL string
	APIKey    string
	// Backend selects "remote" (the service) or "direct" (an LLM endpoint).
	Backend string

	// LLM, used by the direct backend
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	LanguageHint string

	// Page loading and extraction
	Strategy     string // heuristic | readability
	Render       bool
	RenderShowUI bool
	ProxyURL     string
	UserAgent    string
	FetchTimeout time.Duration

	// Output
	OutputPath   string
	OutputFormat string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheMaxBytes    int64
	CacheMaxCount    int
	HTTPCacheOnly    bool
	LLMCacheOnly     bool

	Verbose bool
}

const (
	BackendRemote = "remote"
	BackendDirect = "direct"

	defaultUserAgent    = "pagedigest/1.0 (+https://github.com/hyperifyio/pagedigest)"
	defaultFetchTimeout = 20 * time.Second
	defaultCacheDir     = ".pagedigest-cache"
)

// Defaults returns the configuration used before flags, env and file apply.
func Defaults() Config {
	return Config{
		Backend:      BackendRemote,
		Strategy:     "heuristic",
		UserAgent:    defaultUserAgent,
		FetchTimeout: defaultFetchTimeout,
		OutputFormat: "text",
		CacheDir:     defaultCacheDir,
	}
}

// Resolve layers configuration sources: flags over env over file over
// Defaults. flags holds only values the user set explicitly; fc may be nil.
func Resolve(flags Config, fc *FileConfig) Config {
	var cfg Config
	if fc != nil {
		ApplyFileConfig(&cfg, *fc)
	}
	ApplyEnvOverrides(&cfg)
	overlay(&cfg, flags)
	overlay(&cfg, Defaults(), onlyUnset)
	return cfg
}

type overlayMode int

const (
	always overlayMode = iota
	onlyUnset
)

// overlay copies the non-zero fields of src into dst. With onlyUnset it
// leaves fields dst already has.
func overlay(dst *Config, src Config, mode ...overlayMode) {
	keep := len(mode) > 0 && mode[0] == onlyUnset
	str := func(d *string, s string) {
		if s != "" && (!keep || *d == "") {
			*d = s
		}
	}
	dur := func(d *time.Duration, s time.Duration) {
		if s != 0 && (!keep || *d == 0) {
			*d = s
		}
	}
	flag := func(d *bool, s bool) {
		if s {
			*d = true
		}
	}
	str(&dst.ServerURL, src.ServerURL)
	str(&dst.APIKey, src.APIKey)
	str(&dst.Backend, src.Backend)
	str(&dst.LLMBaseURL, src.LLMBaseURL)
	str(&dst.LLMModel, src.LLMModel)
	str(&dst.LLMAPIKey, src.LLMAPIKey)
	str(&dst.LanguageHint, src.LanguageHint)
	str(&dst.Strategy, src.Strategy)
	str(&dst.ProxyURL, src.ProxyURL)
	str(&dst.UserAgent, src.UserAgent)
	str(&dst.OutputPath, src.OutputPath)
	str(&dst.OutputFormat, src.OutputFormat)
	str(&dst.CacheDir, src.CacheDir)
	dur(&dst.FetchTimeout, src.FetchTimeout)
	dur(&dst.CacheMaxAge, src.CacheMaxAge)
	if src.CacheMaxBytes != 0 && (!keep || dst.CacheMaxBytes == 0) {
		dst.CacheMaxBytes = src.CacheMaxBytes
	}
	if src.CacheMaxCount != 0 && (!keep || dst.CacheMaxCount == 0) {
		dst.CacheMaxCount = src.CacheMaxCount
	}
	flag(&dst.Render, src.Render)
	flag(&dst.RenderShowUI, src.RenderShowUI)
	flag(&dst.CacheClear, src.CacheClear)
	flag(&dst.CacheStrictPerms, src.CacheStrictPerms)
	flag(&dst.HTTPCacheOnly, src.HTTPCacheOnly)
	flag(&dst.LLMCacheOnly, src.LLMCacheOnly)
	flag(&dst.Verbose, src.Verbose)
}
