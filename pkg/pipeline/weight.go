package pipeline

import (
	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/reconcile"
	"github.com/matzehuels/vastmap/pkg/treemap"
	"github.com/matzehuels/vastmap/pkg/vast"
)

// Weighting modes.
const (
	// ModeAggregate weights nodes by reconciled size so that every declared
	// size is counted exactly once.
	ModeAggregate = "aggregate"
	// ModeSize weights nodes by their raw declared size. Internal nodes that
	// declare a size are counted on top of their children.
	ModeSize = "size"
	// ModeCount weights every sized node as 1.
	ModeCount = "count"
)

// ValidModes is the set of supported weighting modes.
var ValidModes = map[string]bool{
	ModeAggregate: true,
	ModeSize:      true,
	ModeCount:     true,
}

// AggregateWeight weights each node by its own size plus differential.
func AggregateWeight(w *reconcile.Weights) treemap.WeightFunc {
	return w.Aggregate
}

// SizeWeight weights each node by its declared size.
func SizeWeight(n *vast.Node) float64 {
	return n.Size
}

// CountWeight weights each node with a positive size as 1.
func CountWeight(n *vast.Node) float64 {
	if n.Size > 0 {
		return 1
	}
	return 0
}

// WeightFor returns the weighting function for mode. An empty mode selects
// the aggregate weighting, which requires w.
func WeightFor(mode string, w *reconcile.Weights) (treemap.WeightFunc, error) {
	switch mode {
	case "", ModeAggregate:
		if w == nil {
			return nil, errors.New(errors.ErrCodeInternal, "aggregate weighting requires reconciled weights")
		}
		return AggregateWeight(w), nil
	case ModeSize:
		return SizeWeight, nil
	case ModeCount:
		return CountWeight, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q", mode)
	}
}
