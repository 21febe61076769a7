// Package xmldoc parses XML documents into a small navigable tree so that
// response interpretation does not depend on a particular XML library.
package xmldoc

// Node is an element (or the document itself) in a parsed XML tree.
type Node interface {
	// Child returns the first child element with the given name.
	Child(name string) (Node, bool)
	// Children returns the child elements in document order. Attributes are
	// not children.
	Children() []Field
	// Text returns the character data of a leaf element. It reports false
	// for elements that only contain other elements.
	Text() (string, bool)
	// Empty reports whether the node has neither child elements nor text.
	Empty() bool
}

// Field is a named child element.
type Field struct {
	Name string
	Node Node
}

// Parser turns raw bytes into a document tree.
type Parser interface {
	Parse(data []byte) (Node, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(data []byte) (Node, error)

func (f ParserFunc) Parse(data []byte) (Node, error) { return f(data) }

// TextOf returns the text of the named child of n, or "" when n has no such
// leaf child.
func TextOf(n Node, name string) string {
	c, ok := n.Child(name)
	if !ok {
		return ""
	}
	s, _ := c.Text()
	return s
}
