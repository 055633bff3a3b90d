// Package tmap serializes laid-out trees as TMAP documents.
//
// A TMAP document carries only what a viewer needs: each node's rectangle,
// its name and type, and its children in input order. Weights, sizes and
// reconciliation artifacts never appear in the output. Leaves have no
// "children" key at all.
//
//	{
//	  "type": "tmap",
//	  "version": "1.0.0",
//	  "timestamp": "2024-01-01T00:00:00Z",
//	  "source": "vast.json",
//	  "treemap": {"x0": 0, "y0": 0, "x1": 940, "y1": 450, "data": {"name": "app"}, "children": [...]}
//	}
//
// Serialization is deterministic except for the timestamp.
package tmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/treemap"
)

// Document kind and schema version written by [Wrap].
const (
	Type    = "tmap"
	Version = "1.0.0"
)

// Document is a TMAP document.
type Document struct {
	Type      string `json:"type"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Treemap   *Node  `json:"treemap"`
}

// Node is a serialized treemap node.
type Node struct {
	X0       float64 `json:"x0"`
	Y0       float64 `json:"y0"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	Data     Data    `json:"data"`
	Children []*Node `json:"children,omitempty"`
}

// Data holds the identifying fields copied from the source node.
type Data struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Serialize converts a laid-out tree into its TMAP shape.
func Serialize(n *treemap.Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		X0: n.X0, Y0: n.Y0, X1: n.X1, Y1: n.Y1,
	}
	if n.Source != nil {
		out.Data = Data{Name: n.Source.Name, Type: n.Source.Type}
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = Serialize(c)
		}
	}
	return out
}

// Wrap builds a document around root. The timestamp is now in UTC, RFC 3339.
func Wrap(root *Node, source string, now time.Time) *Document {
	return &Document{
		Type:      Type,
		Version:   Version,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Source:    source,
		Treemap:   root,
	}
}

// Marshal encodes doc as two-space indented JSON with a trailing newline.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes doc to w.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes doc to path.
func WriteFile(doc *Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// Unmarshal decodes a TMAP document and checks its kind and version.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode tmap")
	}
	if doc.Type != Type {
		return nil, &errors.FormatError{Field: "type", Want: Type, Got: doc.Type}
	}
	if doc.Version != Version {
		return nil, &errors.FormatError{Field: "version", Want: Version, Got: doc.Version}
	}
	if doc.Treemap == nil {
		return nil, &errors.FormatError{Field: "treemap", Want: "node", Got: "null"}
	}
	return &doc, nil
}

// ReadFile reads and decodes the TMAP document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return Unmarshal(data)
}
