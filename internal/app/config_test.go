package app

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	y := writeFile(t, dir, "pagedigest.yaml", `
server:
  url: http://127.0.0.1:9000
  key: AIzaFromFile
backend: direct
llm:
  base: http://localhost:11434/v1
  model: llama3
extract:
  strategy: readability
  render: true
  timeout: 45s
output:
  format: markdown
cache:
  dir: /var/cache/pagedigest
  maxAge: 24h
  strictPerms: true
`)
	fc, err := LoadConfigFile(y)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	var cfg Config
	ApplyFileConfig(&cfg, fc)
	if cfg.ServerURL != "http://127.0.0.1:9000" || cfg.APIKey != "AIzaFromFile" || cfg.Backend != "direct" {
		t.Fatalf("server section not applied: %+v", cfg)
	}
	if cfg.LLMModel != "llama3" || cfg.Strategy != "readability" || !cfg.Render || cfg.FetchTimeout != 45*time.Second {
		t.Fatalf("llm/extract sections not applied: %+v", cfg)
	}
	if cfg.CacheMaxAge != 24*time.Hour || !cfg.CacheStrictPerms || cfg.OutputFormat != "markdown" {
		t.Fatalf("cache/output sections not applied: %+v", cfg)
	}

	j := writeFile(t, dir, "pagedigest.json", `{"backend":"remote","server":{"url":"http://x"}}`)
	fc, err = LoadConfigFile(j)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if fc.Backend != "remote" || fc.Server.URL != "http://x" {
		t.Fatalf("json not parsed: %+v", fc)
	}

	bad := writeFile(t, dir, "broken.conf", "{{{ not: [valid")
	if _, err := LoadConfigFile(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyFileConfig_KeepsExplicitValues(t *testing.T) {
	var fc FileConfig
	fc.Server.URL = "http://file"
	fc.Language = "de"
	cfg := Config{ServerURL: "http://flag"}
	ApplyFileConfig(&cfg, fc)
	if cfg.ServerURL != "http://flag" || cfg.LanguageHint != "de" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	ok := Defaults()
	if err := ValidateConfig(ok); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "cloud" }, "unknown backend"},
		{"direct without model", func(c *Config) { c.Backend = BackendDirect }, "llm.model"},
		{"unknown strategy", func(c *Config) { c.Strategy = "magic" }, "extract strategy"},
		{"unknown format", func(c *Config) { c.OutputFormat = "docx" }, "output format"},
		{"negative", func(c *Config) { c.CacheMaxCount = -1 }, "negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := ValidateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
	pdf := Defaults()
	pdf.OutputPath = "out.pdf"
	if err := ValidateConfig(pdf); err != nil {
		t.Fatalf("pdf output should validate: %v", err)
	}
}
