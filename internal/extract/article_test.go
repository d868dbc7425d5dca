package extract

import (
	"strings"
	"testing"
)

// fakeTree is a fixture Tree keyed by exact selector strings.
type fakeTree struct {
	nodes map[string][]Node
	body  Node
}

type fakeNode struct{ text, content string }

func (f fakeNode) Text() string    { return f.text }
func (f fakeNode) Content() string { return f.content }

func (t *fakeTree) First(sel string) (Node, bool) {
	if ns := t.nodes[sel]; len(ns) > 0 {
		return ns[0], true
	}
	return nil, false
}

func (t *fakeTree) All(sel string) []Node { return t.nodes[sel] }

func (t *fakeTree) Body() (Node, bool) {
	if t.body == nil {
		return nil, false
	}
	return t.body, true
}

type panicTree struct{}

func (panicTree) First(string) (Node, bool) { panic("boom") }
func (panicTree) All(string) []Node         { panic("boom") }
func (panicTree) Body() (Node, bool)        { panic("boom") }

var longText = strings.Repeat("Readable article sentence. ", 8)

func parse(t *testing.T, src string) *HTMLTree {
	t.Helper()
	tree, err := ParseHTML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestExtract_ArticleTagWins(t *testing.T) {
	tree := parse(t, `<html><body>
		<nav>Home Menu</nav>
		<main><div class="content">`+longText+` from main</div></main>
		<article><h1>Title</h1><p>`+longText+`</p></article>
	</body></html>`)
	res := Extract(tree)
	if res.Method != MethodArticleTag {
		t.Fatalf("method=%q, want %q", res.Method, MethodArticleTag)
	}
	if !strings.HasPrefix(res.Text, "Title\n") {
		t.Fatalf("expected heading first, got %q", res.Text)
	}
	if strings.Contains(res.Text, "from main") {
		t.Fatalf("main content leaked into article result")
	}
}

func TestExtract_ShortArticleFallsThrough(t *testing.T) {
	tree := parse(t, `<html><body>
		<article>Too short</article>
		<div class="post-content">`+longText+`</div>
	</body></html>`)
	res := Extract(tree)
	if res.Method != "selector: .post-content" {
		t.Fatalf("method=%q", res.Method)
	}
	if res.Text != strings.TrimSpace(longText) {
		t.Fatalf("text=%q", res.Text)
	}
}

func TestExtract_JSONLDSkipsMalformed(t *testing.T) {
	body := strings.Repeat("Structured body text. ", 10)
	tree := parse(t, `<html><head>
		<script type="application/ld+json">{not json</script>
		<script type="application/ld+json">[{"articleBody": "array payloads are ignored"}]</script>
		<script type="application/ld+json">{"@type":"NewsArticle","articleBody":"`+body+`"}</script>
	</head><body><p>short</p></body></html>`)
	res := Extract(tree)
	if res.Method != MethodJSONLD {
		t.Fatalf("method=%q, want %q", res.Method, MethodJSONLD)
	}
	if res.Text != body {
		t.Fatalf("articleBody should be used verbatim, got %q", res.Text)
	}
}

func TestExtract_JSONLDTooShortIgnored(t *testing.T) {
	tree := &fakeTree{nodes: map[string][]Node{
		`script[type="application/ld+json"]`: {fakeNode{content: `{"articleBody":"tiny"}`}},
	}}
	if res := Extract(tree); res.Method != MethodNone {
		t.Fatalf("method=%q, want none", res.Method)
	}
}

func TestExtract_JSONLDKeyIsExact(t *testing.T) {
	body := strings.Repeat("Structured body text. ", 10)
	cases := map[string]string{
		"other casing":       `{"ARTICLEBODY":"` + body + `"}`,
		"non-string body":    `{"articleBody":{"text":"` + body + `"}}`,
		"exact key is first": `{"articleBody":"` + body + `","ArticleBody":"short"}`,
		"exact key is last":  `{"ArticleBody":"short","articleBody":"` + body + `"}`,
	}
	want := map[string]string{
		"other casing":       MethodNone,
		"non-string body":    MethodNone,
		"exact key is first": MethodJSONLD,
		"exact key is last":  MethodJSONLD,
	}
	for name, payload := range cases {
		tree := &fakeTree{nodes: map[string][]Node{
			`script[type="application/ld+json"]`: {fakeNode{content: payload}},
		}}
		res := Extract(tree)
		if res.Method != want[name] {
			t.Fatalf("%s: method=%q, want %q", name, res.Method, want[name])
		}
		if res.Method == MethodJSONLD && res.Text != body {
			t.Fatalf("%s: text=%q", name, res.Text)
		}
	}
}

func TestExtract_SelectorOrder(t *testing.T) {
	tree := &fakeTree{nodes: map[string][]Node{
		"main":           {fakeNode{text: "short"}},
		".entry-content": {fakeNode{text: longText}},
		".content":       {fakeNode{text: longText + "later"}},
		".article-text":  {fakeNode{text: longText}},
	}}
	res := Extract(tree)
	if res.Method != "selector: .entry-content" {
		t.Fatalf("method=%q", res.Method)
	}
}

func TestExtract_NewsSelectors(t *testing.T) {
	tree := parse(t, `<html><body>
		<div class="story-content">`+longText+`</div>
	</body></html>`)
	res := Extract(tree)
	if res.Method != "news selector: .story-content" {
		t.Fatalf("method=%q", res.Method)
	}
}

func TestExtract_ParagraphFallback(t *testing.T) {
	real := "A real sentence that is sufficiently long to pass the short-paragraph filter."
	tree := parse(t, `<html><body>
		<p>Subscribe now</p>
		<p>`+real+`</p>
		<p>Share this story with everyone you know on every network</p>
		<p>tiny</p>
		<p>`+real+`</p>
	</body></html>`)
	res := Extract(tree)
	if res.Method != MethodParagraphs {
		t.Fatalf("method=%q, want %q", res.Method, MethodParagraphs)
	}
	if res.Text != real+"\n\n"+real {
		t.Fatalf("text=%q", res.Text)
	}
}

func TestExtract_BodyFallbackStripsChrome(t *testing.T) {
	tree := &fakeTree{body: fakeNode{text: strings.Join([]string{
		"Home | News | Sport",
		strings.Repeat("Plain body copy without markup. ", 5),
		"Copyright 2024 Example Corp",
	}, "\n")}}
	res := Extract(tree)
	if res.Method != MethodBody {
		t.Fatalf("method=%q, want %q", res.Method, MethodBody)
	}
	if strings.Contains(res.Text, "Home") || strings.Contains(res.Text, "Copyright") {
		t.Fatalf("navigation/footer lines should be stripped: %q", res.Text)
	}
	if res.Text != strings.TrimSpace(strings.Repeat("Plain body copy without markup. ", 5)) {
		t.Fatalf("text=%q", res.Text)
	}
}

func TestExtract_BodyTooShortAfterCleanup(t *testing.T) {
	tree := &fakeTree{body: fakeNode{text: "Menu\n" + strings.Repeat("Home link text ", 10) + "\nshort tail"}}
	res := Extract(tree)
	if res != (Result{Method: MethodNone}) {
		t.Fatalf("got %+v", res)
	}
}

func TestExtract_NothingFound(t *testing.T) {
	tree := parse(t, `<html><body><div>Hello there.</div></body></html>`)
	res := Extract(tree)
	if res.Text != "" || res.Method != MethodNone {
		t.Fatalf("got %+v, want empty/none", res)
	}
}

func TestExtract_NeverPanics(t *testing.T) {
	if res := Extract(panicTree{}); res.Method != MethodNone {
		t.Fatalf("method=%q", res.Method)
	}
	if res := Extract(nil); res.Method != MethodNone {
		t.Fatalf("method=%q", res.Method)
	}
}

func TestExtract_NonEmptyTextImpliesMethod(t *testing.T) {
	pages := []string{
		`<article>` + longText + `</article>`,
		`<div id="content">` + longText + `</div>`,
		`<p>` + longText + `</p>`,
		`<div>` + longText + `</div>`,
		`<div>short</div>`,
	}
	for _, p := range pages {
		res := Extract(parse(t, "<html><body>"+p+"</body></html>"))
		if res.Text != "" && res.Method == MethodNone {
			t.Fatalf("text without method for %q", p)
		}
		if res.Text == "" && res.Method != MethodNone {
			t.Fatalf("method %q without text for %q", res.Method, p)
		}
	}
}
