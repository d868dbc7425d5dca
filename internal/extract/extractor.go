package extract

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// MethodReadability labels text produced by ReadabilityExtractor.
const MethodReadability = "readability"

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap readability tactics without changing callers.
type Extractor interface {
	// Extract converts raw HTML bytes into a simplified Document. pageURL
	// may be empty.
	Extract(input []byte, pageURL string) Document
}

// HeuristicExtractor runs the ordered selector strategies of Extract.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input []byte, _ string) Document {
	return FromHTML(input)
}

// ReadabilityExtractor scores the page with go-readability and falls back to
// the heuristic strategies when that finds nothing long enough.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(input []byte, pageURL string) Document {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(input), u)
	if err == nil {
		text := strings.TrimSpace(article.TextContent)
		if longEnough(text) {
			return Document{Title: strings.TrimSpace(article.Title), Text: text, Method: MethodReadability}
		}
	}
	return FromHTML(input)
}

// ForStrategy returns the extractor named by a config value. Unknown names
// select the heuristic extractor.
func ForStrategy(name string) Extractor {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "readability":
		return ReadabilityExtractor{}
	default:
		return HeuristicExtractor{}
	}
}
