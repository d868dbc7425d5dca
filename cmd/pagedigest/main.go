package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperifyio/pagedigest/internal/app"
	"github.com/hyperifyio/pagedigest/internal/summarize"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	if isBrowserLaunch(args) {
		args = []string{"host"}
	}

	root := newRootCmd(os.Stdin, os.Stdout)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("pagedigest failed")
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when a page had nothing worth summarizing and 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, app.ErrNotEnoughContent) || errors.Is(err, summarize.ErrNoSubstantiveBody) {
		return 2
	}
	return 1
}

// isBrowserLaunch recognizes how browsers start native hosts: Chrome passes
// the caller's origin, Firefox the manifest path and the add-on ID.
func isBrowserLaunch(args []string) bool {
	switch {
	case len(args) == 0:
		return false
	case strings.HasPrefix(args[0], "chrome-extension://"):
		return true
	case len(args) == 2 && filepath.IsAbs(args[0]) && strings.HasSuffix(args[0], ".json"):
		return true
	}
	return false
}

type cli struct {
	stdin  io.Reader
	stdout io.Writer

	configPath string
	envFiles   []string
	raw        app.Config
	cfg        app.Config
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	return newCLI(stdin, stdout).command()
}

func newCLI(stdin io.Reader, stdout io.Writer) *cli {
	return &cli{stdin: stdin, stdout: stdout}
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:     "pagedigest",
		Short:   "Extract the readable text of web pages and summarize it",
		Version: app.VersionString(),
		Long: `pagedigest pulls the main article text out of a web page, a saved HTML
file or stdin, and summarizes it or answers questions about it using the
summarization service or an OpenAI-compatible model.`,
		Example: `  # Print the article text of a page
  pagedigest extract https://example.com/news/story

  # Detailed summary written as Markdown (format inferred from extension)
  pagedigest summarize --type detailed -o story.md example.com/news/story

  # Ask questions about a saved page
  pagedigest chat saved-page.html

  # Run as a browser native messaging host
  pagedigest host`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.resolve,
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", os.Getenv("PAGEDIGEST_CONFIG"), "Path to a YAML or JSON config file")
	pf.StringSliceVar(&c.envFiles, "env", []string{".env"}, "Dotenv files to load before reading the environment (missing files are skipped)")
	pf.StringVar(&c.raw.ServerURL, "server", "", "Summarization service base URL")
	pf.StringVar(&c.raw.APIKey, "api-key", "", "Gemini API key forwarded to the service")
	pf.StringVar(&c.raw.Backend, "backend", "", "Summarization backend: remote or direct")
	pf.StringVar(&c.raw.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL for the direct backend")
	pf.StringVar(&c.raw.LLMModel, "llm.model", "", "Model name for the direct backend")
	pf.StringVar(&c.raw.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
	pf.StringVar(&c.raw.LanguageHint, "lang", "", "Optional output language hint, e.g. 'en' or 'fi'")
	pf.StringVar(&c.raw.Strategy, "strategy", "", "Extraction strategy: heuristic or readability")
	pf.BoolVar(&c.raw.Render, "render", false, "Render pages in a headless browser before extraction")
	pf.BoolVar(&c.raw.RenderShowUI, "showui", false, "Show the browser UI when rendering")
	pf.StringVarP(&c.raw.ProxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890)")
	pf.StringVar(&c.raw.UserAgent, "user-agent", "", "User-Agent for page fetches")
	pf.DurationVarP(&c.raw.FetchTimeout, "timeout", "t", 0, "Page fetch timeout")
	pf.StringVarP(&c.raw.OutputPath, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	pf.StringVarP(&c.raw.OutputFormat, "format", "f", "", "Output format (text, json, markdown, pdf)")
	pf.StringVar(&c.raw.CacheDir, "cache.dir", "", "Cache directory path")
	pf.DurationVar(&c.raw.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge; 0 disables")
	pf.BoolVar(&c.raw.CacheClear, "cache.clear", false, "Clear the cache directory before running")
	pf.BoolVar(&c.raw.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	pf.Int64Var(&c.raw.CacheMaxBytes, "cache.maxBytes", 0, "Evict oldest cache entries above this total size; 0 disables")
	pf.IntVar(&c.raw.CacheMaxCount, "cache.maxCount", 0, "Evict oldest cache entries above this count; 0 disables")
	pf.BoolVar(&c.raw.HTTPCacheOnly, "cache.httpOnly", false, "Serve pages only from the cache")
	pf.BoolVar(&c.raw.LLMCacheOnly, "cache.llmOnly", false, "Serve direct-backend answers only from the cache")
	pf.BoolVarP(&c.raw.Verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(c.extractCmd(), c.summarizeCmd(), c.chatCmd(), c.healthCmd(), c.hostCmd(), c.keyCmd())
	return root
}

// resolve loads dotenv files and the config file, then layers them under the
// flags the user set explicitly.
func (c *cli) resolve(cmd *cobra.Command, _ []string) error {
	if err := app.LoadEnvFiles(c.envFiles...); err != nil {
		return err
	}
	var fc *app.FileConfig
	if strings.TrimSpace(c.configPath) != "" {
		loaded, err := app.LoadConfigFile(c.configPath)
		if err != nil {
			return err
		}
		fc = &loaded
	}
	c.cfg = app.Resolve(changedOnly(cmd.Flags(), c.raw), fc)
	if c.cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("backend", c.cfg.Backend).Str("server", c.cfg.ServerURL).Str("cache", c.cfg.CacheDir).Msg("configuration resolved")
	return nil
}

var flagFields = map[string]func(dst *app.Config, src app.Config){
	"server":            func(d *app.Config, s app.Config) { d.ServerURL = s.ServerURL },
	"api-key":           func(d *app.Config, s app.Config) { d.APIKey = s.APIKey },
	"backend":           func(d *app.Config, s app.Config) { d.Backend = s.Backend },
	"llm.base":          func(d *app.Config, s app.Config) { d.LLMBaseURL = s.LLMBaseURL },
	"llm.model":         func(d *app.Config, s app.Config) { d.LLMModel = s.LLMModel },
	"llm.key":           func(d *app.Config, s app.Config) { d.LLMAPIKey = s.LLMAPIKey },
	"lang":              func(d *app.Config, s app.Config) { d.LanguageHint = s.LanguageHint },
	"strategy":          func(d *app.Config, s app.Config) { d.Strategy = s.Strategy },
	"render":            func(d *app.Config, s app.Config) { d.Render = s.Render },
	"showui":            func(d *app.Config, s app.Config) { d.RenderShowUI = s.RenderShowUI },
	"proxy":             func(d *app.Config, s app.Config) { d.ProxyURL = s.ProxyURL },
	"user-agent":        func(d *app.Config, s app.Config) { d.UserAgent = s.UserAgent },
	"timeout":           func(d *app.Config, s app.Config) { d.FetchTimeout = s.FetchTimeout },
	"output":            func(d *app.Config, s app.Config) { d.OutputPath = s.OutputPath },
	"format":            func(d *app.Config, s app.Config) { d.OutputFormat = s.OutputFormat },
	"cache.dir":         func(d *app.Config, s app.Config) { d.CacheDir = s.CacheDir },
	"cache.maxAge":      func(d *app.Config, s app.Config) { d.CacheMaxAge = s.CacheMaxAge },
	"cache.clear":       func(d *app.Config, s app.Config) { d.CacheClear = s.CacheClear },
	"cache.strictPerms": func(d *app.Config, s app.Config) { d.CacheStrictPerms = s.CacheStrictPerms },
	"cache.maxBytes":    func(d *app.Config, s app.Config) { d.CacheMaxBytes = s.CacheMaxBytes },
	"cache.maxCount":    func(d *app.Config, s app.Config) { d.CacheMaxCount = s.CacheMaxCount },
	"cache.httpOnly":    func(d *app.Config, s app.Config) { d.HTTPCacheOnly = s.HTTPCacheOnly },
	"cache.llmOnly":     func(d *app.Config, s app.Config) { d.LLMCacheOnly = s.LLMCacheOnly },
	"verbose":           func(d *app.Config, s app.Config) { d.Verbose = s.Verbose },
}

// changedOnly keeps the values of flags the user actually passed so that
// flag defaults never mask env or file settings.
func changedOnly(fs *pflag.FlagSet, raw app.Config) app.Config {
	var out app.Config
	fs.Visit(func(f *pflag.Flag) {
		if set, ok := flagFields[f.Name]; ok {
			set(&out, raw)
		}
	})
	return out
}

func (c *cli) newApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}
	return a, nil
}

func (c *cli) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract SOURCE",
		Short: "Print the readable article text of a URL, file or - for stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			a.SetIO(c.stdin, c.stdout)
			page, err := a.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.WriteReport(app.Report{Page: page})
		},
	}
}

func (c *cli) summarizeCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "summarize SOURCE",
		Short: "Summarize the article at a URL, file or - for stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			a.SetIO(c.stdin, c.stdout)
			rep, err := a.Summarize(cmd.Context(), args[0], summarize.ParseKind(kind))
			if err != nil {
				return err
			}
			return a.WriteReport(rep)
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(summarize.Brief), "Summary type: brief, detailed or bullets")
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat SOURCE",
		Short: "Ask questions about an article interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return errors.New("chat reads questions from stdin; pass a URL or file")
			}
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			return a.Chat(cmd.Context(), args[0], c.stdin, c.stdout)
		},
	}
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the summarization backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			h, err := a.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend unreachable: %w", err)
			}
			fmt.Fprintf(c.stdout, "%s (active chat sessions: %d)\n", h.Detail, h.ActiveSessions)
			if !h.Ready {
				return errors.New("backend not ready")
			}
			return nil
		},
	}
}

func (c *cli) hostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Serve article extraction over the browser native messaging protocol",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			return a.Host(cmd.Context(), c.stdin, c.stdout)
		},
	}
}

func (c *cli) keyCmd() *cobra.Command {
	key := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key",
	}
	key.AddCommand(&cobra.Command{
		Use:   "check [KEY]",
		Short: "Validate an API key against the summarization service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := c.cfg.APIKey
			if len(args) == 1 {
				k = args[0]
			}
			if strings.TrimSpace(k) == "" {
				return errors.New("no API key given")
			}
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.CheckAPIKey(cmd.Context(), k); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "API key is valid.")
			return nil
		},
	})
	return key
}
