// Package reconcile computes layout weights for a VAST node tree.
//
// A VAST node's size is its total footprint, children included, while a
// treemap layout sums "own value + children" at every level. Feeding raw
// sizes to the layout would count every child twice. Reconcile walks the
// tree bottom-up and attaches a differential of -childSum to each node that
// declares a size, so that own size + differential + children collapses back
// to exactly the declared size. Nodes without a size take the sum of their
// children.
//
// The source tree is never modified. The result is a [Weights] table keyed
// by node pointer, so the same tree can be reconciled any number of times.
package reconcile

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vastmap/pkg/vast"
)

// Weight is the reconciled annotation of a single node.
type Weight struct {
	// Size is the node's declared size (0 when absent).
	Size float64
	// Differential cancels the children's contributions when Size is declared.
	Differential float64
	// HasDifferential is false for nodes that derive their size from children.
	HasDifferential bool
	// ChildSum is the sum of the children's contributions.
	ChildSum float64
	// Contribution is what the node adds to its parent's child sum.
	Contribution float64
}

// Aggregate returns own size plus differential, the value a layout engine
// should use as the node's own weight.
func (w Weight) Aggregate() float64 {
	return w.Size + w.Differential
}

// Warning records a node whose children claim more space than it declares.
type Warning struct {
	Node     *vast.Node
	Size     float64
	Children float64
}

// Option configures [Reconcile].
type Option func(*config)

type config struct {
	logger *log.Logger
	level  log.Level
}

// WithLogger logs size inconsistencies to l, at warn level unless
// [WithLogLevel] says otherwise.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLogLevel sets the level size inconsistencies are logged at. Callers
// that report [Weights.Warnings] themselves pass log.DebugLevel.
func WithLogLevel(level log.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// Weights maps each node of a reconciled tree to its [Weight].
// It is read-only after Reconcile returns and safe for concurrent readers.
type Weights struct {
	root     *vast.Node
	byNode   map[*vast.Node]Weight
	warnings []Warning
}

// Reconcile computes weights for every node under root.
//
// Size inconsistencies (declared size smaller than the children's total) are
// never fatal: the declared size wins, a [Warning] is recorded and, when a
// logger is configured, logged.
func Reconcile(root *vast.Node, opts ...Option) *Weights {
	cfg := config{logger: log.NewWithOptions(io.Discard, log.Options{}), level: log.WarnLevel}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &Weights{
		root:   root,
		byNode: make(map[*vast.Node]Weight, root.Count()),
	}
	if root != nil {
		w.visit(root, &cfg)
	}
	return w
}

func (w *Weights) visit(n *vast.Node, cfg *config) float64 {
	var childSum float64
	for _, ch := range n.Children {
		childSum += w.visit(ch, cfg)
	}

	wt := Weight{Size: n.Size, ChildSum: childSum, Contribution: childSum}
	if n.Size > 0 {
		wt.Contribution = n.Size
		if !n.IsLeaf() {
			wt.Differential = -childSum
			wt.HasDifferential = true
		}
		if childSum > n.Size {
			w.warnings = append(w.warnings, Warning{Node: n, Size: n.Size, Children: childSum})
			cfg.logger.Log(cfg.level, "children exceed declared size", "node", n.Name, "size", n.Size, "children", childSum)
		}
	}
	w.byNode[n] = wt
	return wt.Contribution
}

// Get returns the weight for n. The boolean is false when n was not part of
// the reconciled tree.
func (w *Weights) Get(n *vast.Node) (Weight, bool) {
	wt, ok := w.byNode[n]
	return wt, ok
}

// Aggregate returns n's own layout weight (size + differential), or 0 for
// nodes outside the reconciled tree.
func (w *Weights) Aggregate(n *vast.Node) float64 {
	return w.byNode[n].Aggregate()
}

// Total returns the root's contribution: its declared size if any, the sum
// of its leaves otherwise.
func (w *Weights) Total() float64 {
	if w.root == nil {
		return 0
	}
	return w.byNode[w.root].Contribution
}

// Warnings returns the size inconsistencies found, in post-order.
func (w *Weights) Warnings() []Warning {
	return w.warnings
}

// Len returns the number of reconciled nodes.
func (w *Weights) Len() int {
	return len(w.byNode)
}

// Root returns the tree the weights were computed for.
func (w *Weights) Root() *vast.Node {
	return w.root
}
