package treemap

import (
	"context"
	"math"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/vast"
)

// Phi is the golden ratio, the default target aspect ratio.
var Phi = (1 + math.Sqrt(5)) / 2

// Engine lays out a VAST tree under a weighting function.
type Engine interface {
	Layout(ctx context.Context, root *vast.Node, weight WeightFunc) (*Node, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, root *vast.Node, weight WeightFunc) (*Node, error)

// Layout calls f.
func (f EngineFunc) Layout(ctx context.Context, root *vast.Node, weight WeightFunc) (*Node, error) {
	return f(ctx, root, weight)
}

// Squarify is the squarified treemap engine.
type Squarify struct {
	Width, Height float64
	// Ratio is the target aspect ratio of rectangles; values <= 1 select Phi.
	Ratio float64
}

// Layout builds the weighted hierarchy for root and assigns rectangles to
// every node. It fails with code LAYOUT_FAILED on an empty canvas, a missing
// root, or a root value that is negative or not a number.
func (s Squarify) Layout(ctx context.Context, root *vast.Node, weight WeightFunc) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !(s.Width > 0) || !(s.Height > 0) {
		return nil, errors.New(errors.ErrCodeLayout, "canvas must be positive, got %vx%v", s.Width, s.Height)
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeLayout, "no root node")
	}
	if weight == nil {
		return nil, errors.New(errors.ErrCodeLayout, "no weight function")
	}

	h := Hierarchy(root, weight)
	if math.IsNaN(h.Value) || math.IsInf(h.Value, 0) || h.Value < 0 {
		return nil, errors.New(errors.ErrCodeLayout, "root value %v is not a non-negative number", h.Value)
	}

	ratio := s.Ratio
	if ratio <= 1 {
		ratio = Phi
	}

	h.X0, h.Y0, h.X1, h.Y1 = 0, 0, s.Width, s.Height
	h.Each(func(n *Node) { squarify(ratio, n) })
	return h, nil
}

// value clamps weights so custom weight functions cannot produce inverted
// rectangles.
func value(n *Node) float64 {
	if n.Value > 0 && !math.IsInf(n.Value, 1) {
		return n.Value
	}
	return 0
}

func squarify(ratio float64, parent *Node) {
	nodes := parent.Children
	if len(nodes) == 0 {
		return
	}

	var childSum float64
	for _, c := range nodes {
		childSum += value(c)
	}
	total := math.Max(value(parent), childSum)

	x0, y0, x1, y1 := parent.X0, parent.Y0, parent.X1, parent.Y1
	n := len(nodes)
	i0, i1 := 0, 0

	for i0 < n {
		dx, dy := x1-x0, y1-y0
		if total <= 0 || dx <= 0 || dy <= 0 {
			collapse(nodes[i0:], x0, y0)
			return
		}

		// Find the next non-empty node.
		var sum float64
		for i1 < n {
			sum = value(nodes[i1])
			i1++
			if sum > 0 {
				break
			}
		}
		if sum == 0 {
			collapse(nodes[i0:], x0, y0)
			return
		}

		minValue, maxValue := sum, sum
		alpha := math.Max(dy/dx, dx/dy) / (total * ratio)
		beta := sum * sum * alpha
		minRatio := math.Max(maxValue/beta, beta/minValue)

		// Keep adding nodes while the aspect ratio maintains or improves.
		for ; i1 < n; i1++ {
			v := value(nodes[i1])
			sum += v
			minValue = math.Min(minValue, v)
			maxValue = math.Max(maxValue, v)
			beta = sum * sum * alpha
			newRatio := math.Max(maxValue/beta, beta/minValue)
			if newRatio > minRatio {
				sum -= v
				break
			}
			minRatio = newRatio
		}

		row := nodes[i0:i1]
		if dx < dy {
			ny := y0 + dy*sum/total
			dice(row, sum, x0, y0, x1, ny)
			y0 = ny
		} else {
			nx := x0 + dx*sum/total
			slice(row, sum, x0, y0, nx, y1)
			x0 = nx
		}
		total -= sum
		i0 = i1
	}
}

// dice lays out a row left to right across the rectangle.
func dice(row []*Node, sum, x0, y0, x1, y1 float64) {
	var k float64
	if sum > 0 {
		k = (x1 - x0) / sum
	}
	for _, c := range row {
		c.Y0, c.Y1 = y0, y1
		c.X0 = x0
		x0 += value(c) * k
		c.X1 = x0
	}
}

// slice lays out a row top to bottom down the rectangle.
func slice(row []*Node, sum, x0, y0, x1, y1 float64) {
	var k float64
	if sum > 0 {
		k = (y1 - y0) / sum
	}
	for _, c := range row {
		c.X0, c.X1 = x0, x1
		c.Y0 = y0
		y0 += value(c) * k
		c.Y1 = y0
	}
}

// collapse gives nodes an empty rectangle at (x, y).
func collapse(nodes []*Node, x, y float64) {
	for _, c := range nodes {
		c.X0, c.Y0, c.X1, c.Y1 = x, y, x, y
	}
}
