package reconcile

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vastmap/pkg/vast"
)

// engineSum mimics a layout engine's bottom-up summation: a node's value is
// its own weight plus the values of its children.
func engineSum(w *Weights, n *vast.Node) float64 {
	v := w.Aggregate(n)
	for _, ch := range n.Children {
		v += engineSum(w, ch)
	}
	return v
}

func TestReconcileNoDoubleCounting(t *testing.T) {
	root := &vast.Node{Name: "root", Size: 100, Children: []*vast.Node{
		{Name: "a", Size: 30},
		{Name: "b", Size: 20},
	}}

	w := Reconcile(root)

	assert.Equal(t, 100.0, w.Total())
	assert.Equal(t, 100.0, engineSum(w, root))

	rw, ok := w.Get(root)
	require.True(t, ok)
	assert.True(t, rw.HasDifferential)
	assert.Equal(t, -50.0, rw.Differential)
	assert.Equal(t, 50.0, rw.ChildSum)
	assert.Empty(t, w.Warnings())
}

func TestReconcileBottomUpFallback(t *testing.T) {
	root := &vast.Node{Name: "root", Children: []*vast.Node{
		{Name: "a", Size: 5},
		{Name: "dir", Children: []*vast.Node{
			{Name: "b", Size: 7},
			{Name: "c", Size: 3},
		}},
	}}

	w := Reconcile(root)

	assert.Equal(t, 15.0, w.Total())
	assert.Equal(t, 15.0, engineSum(w, root))

	dw, _ := w.Get(root.Children[1])
	assert.False(t, dw.HasDifferential)
	assert.Equal(t, 10.0, dw.Contribution)
	assert.Equal(t, 0.0, w.Aggregate(root))
}

func TestReconcileWarningNotFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	node := &vast.Node{Name: "lib", Size: 10, Children: []*vast.Node{
		{Name: "x", Size: 8},
		{Name: "y", Size: 7},
	}}
	root := &vast.Node{Name: "root", Children: []*vast.Node{node, {Name: "z", Size: 1}}}

	w := Reconcile(root, WithLogger(logger))

	require.Len(t, w.Warnings(), 1)
	warn := w.Warnings()[0]
	assert.Same(t, node, warn.Node)
	assert.Equal(t, 10.0, warn.Size)
	assert.Equal(t, 15.0, warn.Children)

	nw, _ := w.Get(node)
	assert.Equal(t, 10.0, nw.Contribution, "declared size wins")
	assert.Equal(t, 11.0, w.Total())
	assert.Equal(t, 11.0, engineSum(w, root))

	assert.Contains(t, buf.String(), "children exceed declared size")
	assert.Contains(t, buf.String(), "lib")
}

func TestReconcileLogLevel(t *testing.T) {
	root := &vast.Node{Name: "lib", Size: 1, Children: []*vast.Node{{Name: "x", Size: 2}}}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	w := Reconcile(root, WithLogger(logger), WithLogLevel(log.DebugLevel))
	assert.Len(t, w.Warnings(), 1)
	assert.Empty(t, buf.String(), "debug records are filtered at info level")

	logger.SetLevel(log.DebugLevel)
	Reconcile(root, WithLogger(logger), WithLogLevel(log.DebugLevel))
	assert.Contains(t, buf.String(), "children exceed declared size")
}

func TestReconcileTotals(t *testing.T) {
	tests := []struct {
		name string
		root *vast.Node
		want float64
	}{
		{
			name: "single leaf",
			root: &vast.Node{Name: "only", Size: 42},
			want: 42,
		},
		{
			name: "empty leaf",
			root: &vast.Node{Name: "empty"},
			want: 0,
		},
		{
			name: "declared root over derived subtree",
			root: &vast.Node{Name: "r", Size: 1000, Children: []*vast.Node{
				{Name: "d", Children: []*vast.Node{{Name: "l1", Size: 10}, {Name: "l2", Size: 20}}},
				{Name: "s", Size: 50, Children: []*vast.Node{{Name: "l3", Size: 5}}},
			}},
			want: 1000,
		},
		{
			name: "derived root over declared subtrees",
			root: &vast.Node{Name: "r", Children: []*vast.Node{
				{Name: "a", Size: 100, Children: []*vast.Node{{Name: "a1", Size: 60}}},
				{Name: "b", Size: 40, Children: []*vast.Node{{Name: "b1", Size: 90}}},
				{Name: "c", Children: []*vast.Node{{Name: "c1", Size: 2}, {Name: "c2"}}},
			}},
			want: 142,
		},
		{
			name: "zero-sized internal nodes pass through",
			root: &vast.Node{Name: "r", Children: []*vast.Node{
				{Name: "x", Children: []*vast.Node{{Name: "y", Children: []*vast.Node{{Name: "z", Size: 9}}}}},
			}},
			want: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Reconcile(tt.root)
			assert.Equal(t, tt.want, w.Total())
			assert.InDelta(t, tt.want, engineSum(w, tt.root), 1e-9)
			assert.Equal(t, tt.root.Count(), w.Len())
		})
	}
}

func TestReconcileDoesNotMutateSource(t *testing.T) {
	root := &vast.Node{Name: "root", Size: 10, Children: []*vast.Node{{Name: "a", Size: 4}}}

	first := Reconcile(root)
	second := Reconcile(root)

	assert.Equal(t, 10.0, root.Size)
	assert.Equal(t, 4.0, root.Children[0].Size)
	assert.Equal(t, first.Total(), second.Total())
	assert.Same(t, root, first.Root())
}

func TestReconcileNilRoot(t *testing.T) {
	w := Reconcile(nil)
	assert.Equal(t, 0.0, w.Total())
	assert.Equal(t, 0, w.Len())

	_, ok := w.Get(&vast.Node{})
	assert.False(t, ok)
}
