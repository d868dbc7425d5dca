package extract

import (
	"bytes"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title  string
	Text   string
	Method string
}

// FromHTML extracts the article text of an HTML page with the ordered
// heuristic strategies. Text is the raw extraction; callers apply Readable
// before handing it on.
func FromHTML(input []byte) Document {
	tree, err := ParseHTML(bytes.NewReader(input))
	if err != nil {
		return Document{Method: MethodNone}
	}
	res := Extract(tree)
	return Document{Title: tree.Title(), Text: res.Text, Method: res.Method}
}
