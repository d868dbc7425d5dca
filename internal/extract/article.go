package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinArticleChars is the trimmed length a strategy must exceed to win.
	MinArticleChars = 100
	// MinParagraphChars is the length a paragraph must exceed to be kept by
	// the paragraph fallback.
	MinParagraphChars = 20
	// MinReadableChars is the smallest cleaned text worth handing downstream.
	MinReadableChars = 50
)

// Method labels reported in Result.Method.
const (
	MethodArticleTag = "article tag"
	MethodJSONLD     = "JSON-LD structured data"
	MethodParagraphs = "paragraph extraction"
	MethodBody       = "body text (cleaned)"
	MethodNone       = "none"
)

// MainSelectors are tried in order after the article tag and JSON-LD.
var MainSelectors = []string{
	"main article",
	`main [role="main"]`,
	`[role="main"]`,
	"main",
	".article-content",
	".post-content",
	".entry-content",
	".content-body",
	".article-body",
	".story-body",
	".post-body",
	".content",
	"#content",
	".main-content",
}

// NewsSelectors cover common news and blog templates.
var NewsSelectors = []string{
	".article-text",
	".article-content-body",
	".post-text",
	".entry-text",
	".story-content",
	".news-content",
	".blog-content",
	".content-wrapper",
	".text-content",
}

var (
	boilerplateParagraph = regexp.MustCompile(`(?i)^(?:subscribe|follow|share|comment|advertisement)`)
	navigationLine       = regexp.MustCompile(`(?m)^.*?(?:Home|Menu|Navigation).*?\n`)
	footerLine           = regexp.MustCompile(`(?m)^.*?(?:Footer|Copyright).*$`)
)

// Result is the outcome of one extraction. Text is empty only when Method is
// MethodNone.
type Result struct {
	Text   string `json:"text"`
	Method string `json:"method"`
}

type strategy func(Tree) (Result, bool)

var strategies = []strategy{
	fromArticleTag,
	fromJSONLD,
	fromSelectors(MainSelectors, "selector: "),
	fromSelectors(NewsSelectors, "news selector: "),
	fromParagraphs,
	fromBody,
}

// Extract returns the main text of t using the first strategy that yields
// more than MinArticleChars characters. It never panics on malformed input
// and returns Result{Method: MethodNone} when every strategy fails.
func Extract(t Tree) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Method: MethodNone}
		}
	}()
	if t == nil {
		return Result{Method: MethodNone}
	}
	for _, s := range strategies {
		if r, ok := s(t); ok {
			return r
		}
	}
	return Result{Method: MethodNone}
}

func longEnough(s string) bool {
	return utf8.RuneCountInString(s) > MinArticleChars
}

func fromArticleTag(t Tree) (Result, bool) {
	n, ok := t.First("article")
	if !ok {
		return Result{}, false
	}
	text := strings.TrimSpace(n.Text())
	if !longEnough(text) {
		return Result{}, false
	}
	return Result{Text: text, Method: MethodArticleTag}, true
}

// jsonLDBody returns the articleBody string of a linked-data payload. The
// key must match exactly; arrays, other casings and non-string values are
// skipped.
func jsonLDBody(payload string) (string, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return "", false
	}
	raw, ok := doc["articleBody"]
	if !ok {
		return "", false
	}
	var body string
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", false
	}
	return body, true
}

func fromJSONLD(t Tree) (Result, bool) {
	for _, n := range t.All(`script[type="application/ld+json"]`) {
		body, ok := jsonLDBody(n.Content())
		if ok && longEnough(body) {
			return Result{Text: body, Method: MethodJSONLD}, true
		}
	}
	return Result{}, false
}

func fromSelectors(selectors []string, label string) strategy {
	return func(t Tree) (Result, bool) {
		for _, sel := range selectors {
			n, ok := t.First(sel)
			if !ok {
				continue
			}
			text := strings.TrimSpace(n.Text())
			if longEnough(text) {
				return Result{Text: text, Method: fmt.Sprintf("%s%s", label, sel)}, true
			}
		}
		return Result{}, false
	}
}

func fromParagraphs(t Tree) (Result, bool) {
	nodes := t.All("p")
	kept := make([]string, 0, len(nodes))
	for _, n := range nodes {
		text := strings.TrimSpace(n.Text())
		if utf8.RuneCountInString(text) <= MinParagraphChars {
			continue
		}
		if boilerplateParagraph.MatchString(text) {
			continue
		}
		kept = append(kept, text)
	}
	joined := strings.Join(kept, "\n\n")
	if !longEnough(joined) {
		return Result{}, false
	}
	return Result{Text: joined, Method: MethodParagraphs}, true
}

func fromBody(t Tree) (Result, bool) {
	body, ok := t.Body()
	if !ok {
		return Result{}, false
	}
	text := strings.TrimSpace(body.Text())
	if !longEnough(text) {
		return Result{}, false
	}
	text = strings.TrimSpace(stripChrome(text))
	if !longEnough(text) {
		return Result{}, false
	}
	return Result{Text: text, Method: MethodBody}, true
}

// stripChrome drops lines that look like site navigation along with their
// line break, and blanks lines that look like footer notices.
func stripChrome(text string) string {
	text = navigationLine.ReplaceAllString(text, "")
	return footerLine.ReplaceAllString(text, "")
}
