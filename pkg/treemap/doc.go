// Package treemap turns a weighted VAST tree into nested rectangles.
//
// # Hierarchy
//
// [Hierarchy] builds a fresh [Node] tree from a VAST tree and a [WeightFunc].
// Values are summed bottom-up: a node's value is its own weight plus the
// values of its children. Every call allocates a new tree, so callers can lay
// out the same source under different weightings concurrently.
//
// # Engines
//
// An [Engine] assigns rectangles. [Squarify] implements the squarified
// treemap algorithm (Bruls, Huizing, van Wijk): children are packed in rows
// whose aspect ratios stay as close as possible to the target ratio. The
// root spans the whole canvas; children partition their parent's rectangle
// proportionally to their values. When a parent's value exceeds the sum of
// its children, the remainder is left uncovered as the parent's own space.
//
// Engines never modify the source tree.
package treemap
