package i18n

// NodeKind says which part of a labelled node receives translated text.
type NodeKind int

const (
	// TextNode receives the translation as its text.
	TextNode NodeKind = iota
	// InputNode receives the translation as its placeholder.
	InputNode
)

// Node is a view element tagged with a message key.
type Node struct {
	Key         string
	Kind        NodeKind
	Text        string
	Placeholder string
}

// Text tags a text label with key.
func Text(key string) Node { return Node{Key: key, Kind: TextNode} }

// Input tags an input field's placeholder with key.
func Input(key string) Node { return Node{Key: key, Kind: InputNode} }

// Decorate returns copies of nodes with their tagged text filled in for the
// active language. Views call it on every render and after every switch.
func (r *Runtime) Decorate(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		switch n.Kind {
		case InputNode:
			n.Placeholder = r.Translate(n.Key)
		default:
			n.Text = r.Translate(n.Key)
		}
		out[i] = n
	}
	return out
}
