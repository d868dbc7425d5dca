package extract

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLTree implements Tree over a parsed HTML document.
type HTMLTree struct {
	doc *goquery.Document
}

// ParseHTML parses r into an HTMLTree. The HTML parser is lenient, so errors
// only come from reading r.
func ParseHTML(r io.Reader) (*HTMLTree, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &HTMLTree{doc: doc}, nil
}

// NewHTMLTree wraps an already parsed document root.
func NewHTMLTree(root *html.Node) *HTMLTree {
	return &HTMLTree{doc: goquery.NewDocumentFromNode(root)}
}

func (t *HTMLTree) First(selector string) (Node, bool) {
	sel := t.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, false
	}
	return htmlNode{n: sel.Get(0)}, true
}

func (t *HTMLTree) All(selector string) []Node {
	sel := t.doc.Find(selector)
	out := make([]Node, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, htmlNode{n: n})
	}
	return out
}

func (t *HTMLTree) Body() (Node, bool) {
	return t.First("body")
}

// Title returns the trimmed document title or "".
func (t *HTMLTree) Title() string {
	return strings.TrimSpace(t.doc.Find("head title").First().Text())
}

type htmlNode struct {
	n *html.Node
}

func (h htmlNode) Text() string {
	// Elements that are not rendered report their raw text, as browsers do.
	if h.n.Type == html.ElementNode && !isRendered(h.n) {
		return h.Content()
	}
	r := &renderer{}
	r.walk(h.n, false)
	return r.String()
}

func (h htmlNode) Content() string {
	var b bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(h.n)
	return b.String()
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"caption": true, "dd": true, "details": true, "dialog": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hgroup": true, "hr": true, "li": true,
	"legend": true, "main": true, "nav": true, "ol": true, "pre": true,
	"section": true, "summary": true, "table": true, "tr": true, "ul": true,
}

// isRendered reports whether an element produces any visible output.
func isRendered(n *html.Node) bool {
	switch strings.ToLower(n.Data) {
	case "script", "style", "noscript", "template", "head", "title", "iframe", "object":
		return false
	}
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return false
		case "style":
			v := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
			if strings.Contains(v, "display:none") || strings.Contains(v, "visibility:hidden") {
				return false
			}
		}
	}
	return true
}

// renderer approximates the innerText algorithm: block boundaries become
// required line breaks, paragraphs require two, and whitespace inside
// ordinary text collapses.
type renderer struct {
	b           strings.Builder
	breaks      int
	space       bool
	started     bool
	atLineStart bool
}

func (r *renderer) requireBreaks(n int) {
	if n > r.breaks {
		r.breaks = n
	}
}

func (r *renderer) emit(s string) {
	if s == "" {
		return
	}
	if r.started {
		switch {
		case r.breaks > 0:
			r.b.WriteString(strings.Repeat("\n", r.breaks))
			r.atLineStart = true
		case r.space && !r.atLineStart:
			r.b.WriteByte(' ')
		}
	}
	r.breaks = 0
	r.space = false
	r.started = true
	r.b.WriteString(s)
	r.atLineStart = strings.HasSuffix(s, "\n")
}

func (r *renderer) lineBreak() {
	if r.started && r.breaks > 0 {
		r.b.WriteString(strings.Repeat("\n", r.breaks))
	}
	r.breaks = 0
	r.space = false
	r.started = true
	r.b.WriteByte('\n')
	r.atLineStart = true
}

func (r *renderer) text(data string, pre bool) {
	if pre {
		r.emit(data)
		return
	}
	fields := strings.Fields(data)
	if len(fields) == 0 {
		if data != "" {
			r.space = true
		}
		return
	}
	if isSpace(data[0]) {
		r.space = true
	}
	r.emit(strings.Join(fields, " "))
	if isSpace(data[len(data)-1]) {
		r.space = true
	}
}

func (r *renderer) walk(n *html.Node, pre bool) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data, pre)
		return
	case html.ElementNode:
		if !isRendered(n) {
			return
		}
	}
	name := strings.ToLower(n.Data)
	if n.Type == html.ElementNode {
		switch {
		case name == "br":
			r.lineBreak()
			return
		case name == "p":
			r.requireBreaks(2)
		case name == "td" || name == "th":
			r.space = true
		case blockElements[name]:
			r.requireBreaks(1)
		}
		if name == "pre" || name == "textarea" {
			pre = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c, pre)
	}
	if n.Type == html.ElementNode {
		switch {
		case name == "p":
			r.requireBreaks(2)
		case blockElements[name]:
			r.requireBreaks(1)
		}
	}
}

func (r *renderer) String() string {
	return r.b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
