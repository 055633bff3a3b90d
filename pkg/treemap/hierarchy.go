package treemap

import "github.com/matzehuels/vastmap/pkg/vast"

// WeightFunc returns a node's own weight, excluding its children.
type WeightFunc func(n *vast.Node) float64

// Node is a laid-out tree node. X0,Y0 is the top-left corner and X1,Y1 the
// bottom-right corner of its rectangle.
type Node struct {
	Source *vast.Node
	Value  float64
	Depth  int

	X0, Y0, X1, Y1 float64

	Parent   *Node
	Children []*Node
}

// Hierarchy builds a new tree mirroring root and sums weights bottom-up.
func Hierarchy(root *vast.Node, weight WeightFunc) *Node {
	if root == nil {
		return nil
	}
	return build(root, nil, 0, weight)
}

func build(src *vast.Node, parent *Node, depth int, weight WeightFunc) *Node {
	n := &Node{Source: src, Depth: depth, Parent: parent}
	n.Value = weight(src)
	if len(src.Children) > 0 {
		n.Children = make([]*Node, len(src.Children))
		for i, ch := range src.Children {
			c := build(ch, n, depth+1, weight)
			n.Children[i] = c
			n.Value += c.Value
		}
	}
	return n
}

// Width returns the horizontal span of the node's rectangle.
func (n *Node) Width() float64 { return n.X1 - n.X0 }

// Height returns the vertical span of the node's rectangle.
func (n *Node) Height() float64 { return n.Y1 - n.Y0 }

// Area returns the area of the node's rectangle.
func (n *Node) Area() float64 { return n.Width() * n.Height() }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Each calls fn for every node in pre-order, parents before children and
// siblings in input order.
func (n *Node) Each(fn func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// Descendants returns n and all nodes below it in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Each(func(d *Node) { out = append(out, d) })
	return out
}

// Leaves returns the leaf nodes under n in pre-order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Each(func(d *Node) {
		if d.IsLeaf() {
			out = append(out, d)
		}
	})
	return out
}
