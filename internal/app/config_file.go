package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
    Server struct {
        URL string `yaml:"url" json:"url"`
        Key string `yaml:"key" json:"key"`
    } `yaml:"server" json:"server"`

    Backend string `yaml:"backend" json:"backend"`

    LLM struct {
        BaseURL string `yaml:"base" json:"base"`
        Model   string `yaml:"model" json:"model"`
        APIKey  string `yaml:"key" json:"key"`
    } `yaml:"llm" json:"llm"`

    Language string `yaml:"language" json:"language"`

    Extract struct {
        Strategy  string        `yaml:"strategy" json:"strategy"`
        Render    bool          `yaml:"render" json:"render"`
        ShowUI    bool          `yaml:"showUI" json:"showUI"`
        Proxy     string        `yaml:"proxy" json:"proxy"`
        UserAgent string        `yaml:"userAgent" json:"userAgent"`
        Timeout   time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"extract" json:"extract"`

    Output struct {
        Path   string `yaml:"path" json:"path"`
        Format string `yaml:"format" json:"format"`
    } `yaml:"output" json:"output"`

    Cache struct {
        Dir           string        `yaml:"dir" json:"dir"`
        MaxAge        time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear         bool          `yaml:"clear" json:"clear"`
        StrictPerms   bool          `yaml:"strictPerms" json:"strictPerms"`
        MaxBytes      int64         `yaml:"maxBytes" json:"maxBytes"`
        MaxCount      int           `yaml:"maxCount" json:"maxCount"`
        HTTPCacheOnly bool          `yaml:"httpOnly" json:"httpOnly"`
        LLMCacheOnly  bool          `yaml:"llmOnly" json:"llmOnly"`
    } `yaml:"cache" json:"cache"`

    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }
    from := Config{
        ServerURL:        fc.Server.URL,
        APIKey:           fc.Server.Key,
        Backend:          fc.Backend,
        LLMBaseURL:       fc.LLM.BaseURL,
        LLMModel:         fc.LLM.Model,
        LLMAPIKey:        fc.LLM.APIKey,
        LanguageHint:     fc.Language,
        Strategy:         fc.Extract.Strategy,
        Render:           fc.Extract.Render,
        RenderShowUI:     fc.Extract.ShowUI,
        ProxyURL:         fc.Extract.Proxy,
        UserAgent:        fc.Extract.UserAgent,
        FetchTimeout:     fc.Extract.Timeout,
        OutputPath:       fc.Output.Path,
        OutputFormat:     fc.Output.Format,
        CacheDir:         fc.Cache.Dir,
        CacheMaxAge:      fc.Cache.MaxAge,
        CacheClear:       fc.Cache.Clear,
        CacheStrictPerms: fc.Cache.StrictPerms,
        CacheMaxBytes:    fc.Cache.MaxBytes,
        CacheMaxCount:    fc.Cache.MaxCount,
        HTTPCacheOnly:    fc.Cache.HTTPCacheOnly,
        LLMCacheOnly:     fc.Cache.LLMCacheOnly,
        Verbose:          fc.Verbose,
    }
    overlay(cfg, from, onlyUnset)
}

// ValidateConfig performs minimal validation of a resolved configuration.
func ValidateConfig(cfg Config) error {
    switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
    case BackendRemote:
    case BackendDirect:
        if strings.TrimSpace(cfg.LLMModel) == "" {
            return errors.New("config: llm.model is required for the direct backend (or set LLM_MODEL)")
        }
    default:
        return fmt.Errorf("config: unknown backend %q (want remote or direct)", cfg.Backend)
    }
    switch strings.ToLower(strings.TrimSpace(cfg.Strategy)) {
    case "heuristic", "readability":
    default:
        return fmt.Errorf("config: unknown extract strategy %q", cfg.Strategy)
    }
    if f := formatFor(cfg.OutputFormat, cfg.OutputPath); f != "pdf" && writers[f] == nil {
        return fmt.Errorf("config: unknown output format %q", cfg.OutputFormat)
    }
    if cfg.FetchTimeout < 0 || cfg.CacheMaxAge < 0 || cfg.CacheMaxBytes < 0 || cfg.CacheMaxCount < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    return nil
}
