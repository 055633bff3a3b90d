package vast

// Document kind and schema version accepted by [Validate].
const (
	Format  = "vast"
	Version = "1.0.0"
)

// Document is a decoded VAST document.
type Document struct {
	Format  string `json:"format" toml:"format"`
	Version string `json:"version" toml:"version"`
	Root    *Node  `json:"vast" toml:"vast"`
}

// Node is one entry of the size report. Size is optional; zero means the
// node's footprint is derived from its children.
type Node struct {
	Name     string  `json:"name" toml:"name"`
	Type     string  `json:"type,omitempty" toml:"type,omitempty"`
	Size     float64 `json:"size,omitempty" toml:"size,omitempty"`
	Children []*Node `json:"children,omitempty" toml:"children,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	c := 1
	for _, ch := range n.Children {
		c += ch.Count()
	}
	return c
}
