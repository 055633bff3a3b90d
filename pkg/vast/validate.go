package vast

import (
	"math"

	"github.com/matzehuels/vastmap/pkg/errors"
)

// Validate checks that doc declares kind "vast" and schema version "1.0.0"
// and that its node tree is well formed.
//
// A kind or version mismatch, or a missing root, is reported as an
// *errors.FormatError. Structural problems (negative or non-finite sizes, shared nodes)
// are reported with code INVALID_INPUT.
func Validate(doc *Document) error {
	if doc == nil {
		return &errors.FormatError{Field: "document", Want: Format, Got: ""}
	}
	if doc.Format != Format {
		return &errors.FormatError{Field: "format", Want: Format, Got: doc.Format}
	}
	if doc.Version != Version {
		return &errors.FormatError{Field: "version", Want: Version, Got: doc.Version}
	}
	if doc.Root == nil {
		return &errors.FormatError{Field: Format, Want: "node", Got: "null"}
	}
	return checkTree(doc.Root)
}

// checkTree walks the tree iteratively so deep reports cannot exhaust the
// stack, and rejects nodes seen twice.
func checkTree(root *Node) error {
	seen := make(map[*Node]struct{})
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n == nil {
			return errors.New(errors.ErrCodeInvalidInput, "null node in children")
		}
		if _, dup := seen[n]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "node %q is reachable from more than one parent", n.Name)
		}
		seen[n] = struct{}{}

		if math.IsNaN(n.Size) || math.IsInf(n.Size, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has non-finite size %v", n.Name, n.Size)
		}
		if n.Size < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has negative size %v", n.Name, n.Size)
		}
		stack = append(stack, n.Children...)
	}
	return nil
}
