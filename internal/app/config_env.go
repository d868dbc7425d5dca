package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// envFirst returns the first non-empty value among keys.
func envFirst(keys ...string) string {
    for _, k := range keys {
        if v := strings.TrimSpace(os.Getenv(k)); v != "" {
            return v
        }
    }
    return ""
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// a config file while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    setStr := func(dst *string, keys ...string) {
        if v := envFirst(keys...); v != "" { *dst = v }
    }
    setStr(&cfg.ServerURL, "PAGEDIGEST_SERVER_URL")
    setStr(&cfg.APIKey, "PAGEDIGEST_API_KEY", "GEMINI_API_KEY")
    setStr(&cfg.Backend, "PAGEDIGEST_BACKEND")
    setStr(&cfg.LLMBaseURL, "LLM_BASE_URL")
    setStr(&cfg.LLMModel, "LLM_MODEL")
    setStr(&cfg.LLMAPIKey, "LLM_API_KEY")
    setStr(&cfg.LanguageHint, "LANGUAGE")
    setStr(&cfg.Strategy, "EXTRACT_STRATEGY")
    setStr(&cfg.ProxyURL, "PAGEDIGEST_PROXY")
    setStr(&cfg.CacheDir, "CACHE_DIR")

    if d, ok := envDuration("CACHE_MAX_AGE"); ok { cfg.CacheMaxAge = d }
    if d, ok := envDuration("FETCH_TIMEOUT"); ok { cfg.FetchTimeout = d }
    if n, err := strconv.ParseInt(envFirst("CACHE_MAX_BYTES"), 10, 64); err == nil && n > 0 { cfg.CacheMaxBytes = n }
    if n, err := strconv.Atoi(envFirst("CACHE_MAX_COUNT")); err == nil && n > 0 { cfg.CacheMaxCount = n }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if v, ok := envBool(envKey); ok { *dst = v }
    }
    setBool(&cfg.Render, "RENDER")
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
    setBool(&cfg.HTTPCacheOnly, "HTTP_CACHE_ONLY")
    setBool(&cfg.LLMCacheOnly, "LLM_CACHE_ONLY")
}

func envDuration(key string) (time.Duration, bool) {
    s := envFirst(key)
    if s == "" { return 0, false }
    d, err := time.ParseDuration(s)
    if err != nil { return 0, false }
    return d, true
}

func envBool(key string) (bool, bool) {
    switch strings.ToLower(envFirst(key)) {
    case "1", "true", "yes", "on":
        return true, true
    case "0", "false", "no", "off":
        return false, true
    }
    return false, false
}
