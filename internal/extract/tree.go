package extract

// Node is a read-only element of a document tree.
type Node interface {
	// Text returns the rendered, visible text of the element, similar to
	// a browser's innerText.
	Text() string
	// Content returns the concatenated raw text of all descendant text
	// nodes, similar to textContent. Script payloads are read through it.
	Content() string
}

// Tree is a read-only document the extraction strategies query. Selectors
// are CSS selectors; an invalid selector matches nothing. Implementations
// must not mutate the underlying document.
type Tree interface {
	First(selector string) (Node, bool)
	All(selector string) []Node
	Body() (Node, bool)
}
