package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Report is what a command prints: the page and, for summarize, its summary.
type Report struct {
	Page    Page
	Kind    string
	Summary string
	// TookSeconds is the summarization time.
	TookSeconds float64
}

type writer func(w io.Writer, r Report) error

var writers = map[string]writer{
	"text":     writeText,
	"json":     writeJSON,
	"markdown": writeMarkdown,
}

// formatFor picks the output format. An explicit non-default format wins;
// otherwise the output path's extension decides.
func formatFor(format, path string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" && format != "text" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".pdf":
		return "pdf"
	}
	return "text"
}

// WriteReport renders r in the configured format to the output path, or to
// stdout when no path is set. PDF requires a path.
func (a *App) WriteReport(r Report) error {
	format := formatFor(a.cfg.OutputFormat, a.cfg.OutputPath)
	if format == "pdf" {
		if a.cfg.OutputPath == "" {
			return fmt.Errorf("pdf output needs an output path")
		}
		var md strings.Builder
		if err := writeMarkdown(&md, r); err != nil {
			return err
		}
		if err := writeSimplePDF(md.String(), a.cfg.OutputPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", a.cfg.OutputPath).Msg("wrote pdf")
		return nil
	}
	wr, ok := writers[format]
	if !ok {
		return fmt.Errorf("unknown output format %q", format)
	}
	if a.cfg.OutputPath == "" {
		return wr(a.stdout, r)
	}
	f, err := os.Create(a.cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := wr(f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("path", a.cfg.OutputPath).Str("format", format).Msg("wrote output")
	return nil
}

func writeText(w io.Writer, r Report) error {
	var err error
	if r.Summary != "" {
		_, err = fmt.Fprintf(w, "%s\n", r.Summary)
	} else {
		_, err = fmt.Fprintf(w, "%s\n", r.Page.Text)
	}
	return err
}

func writeJSON(w io.Writer, r Report) error {
	out := struct {
		Page
		Kind        string  `json:"summary_type,omitempty"`
		Summary     string  `json:"summary,omitempty"`
		TookSeconds float64 `json:"processing_time,omitempty"`
	}{r.Page, r.Kind, r.Summary, r.TookSeconds}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeMarkdown(w io.Writer, r Report) error {
	var b strings.Builder
	title := r.Page.Title
	if title == "" {
		title = r.Page.Source
	}
	b.WriteString("# " + title + "\n\n")
	if strings.HasPrefix(r.Page.Source, "http://") || strings.HasPrefix(r.Page.Source, "https://") {
		fmt.Fprintf(&b, "Source: [%s](%s)\n\n", r.Page.Source, r.Page.Source)
	} else if r.Page.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", r.Page.Source)
	}
	fmt.Fprintf(&b, "Extracted with %s, %d characters", r.Page.Method, r.Page.Length)
	if r.Page.Language != "" {
		fmt.Fprintf(&b, ", language %s", r.Page.Language)
	}
	b.WriteString(".\n\n")
	if r.Summary != "" {
		heading := "Summary"
		if r.Kind != "" {
			heading = strings.ToUpper(r.Kind[:1]) + r.Kind[1:] + " summary"
		}
		b.WriteString("## " + heading + "\n\n")
		b.WriteString(r.Summary + "\n")
		return writeString(w, b.String())
	}
	b.WriteString("## Article\n\n")
	b.WriteString(r.Page.Text + "\n")
	return writeString(w, b.String())
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
