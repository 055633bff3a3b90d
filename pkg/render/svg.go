// Package render draws TMAP documents as static SVG images.
//
// One rectangle is drawn per leaf, inset by one unit so neighbours stay
// visually separate, and filled with a color picked by the name of the
// leaf's parent from a 20-color ordinal palette. Colors are assigned in the
// order parent names are first seen, so the same document always renders
// the same picture.
package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/vastmap/pkg/tmap"
)

// palette is the 20-color ordinal scheme (blue, orange, green, purple and
// gray ramps of four shades each).
var palette = []string{
	"#3182bd", "#6baed6", "#9ecae1", "#c6dbef",
	"#e6550d", "#fd8d3c", "#fdae6b", "#fdd0a2",
	"#31a354", "#74c476", "#a1d99b", "#c7e9c0",
	"#756bb1", "#9e9ac8", "#bcbddc", "#dadaeb",
	"#636363", "#969696", "#bdbdbd", "#d9d9d9",
}

// Option configures [RenderSVG].
type Option func(*svgRenderer)

type svgRenderer struct {
	labels bool
	font   float64
}

// WithoutLabels suppresses leaf name labels.
func WithoutLabels() Option { return func(r *svgRenderer) { r.labels = false } }

// WithFontSize sets the label font size in user units.
func WithFontSize(size float64) Option { return func(r *svgRenderer) { r.font = size } }

// ordinal maps keys to palette entries in first-seen order.
type ordinal struct {
	index map[string]int
}

func (o *ordinal) color(key string) string {
	i, ok := o.index[key]
	if !ok {
		i = len(o.index)
		o.index[key] = i
	}
	return palette[i%len(palette)]
}

// RenderSVG renders doc. The canvas is the root rectangle.
func RenderSVG(doc *tmap.Document, opts ...Option) []byte {
	r := svgRenderer{labels: true, font: 10}
	for _, opt := range opts {
		opt(&r)
	}

	root := doc.Treemap
	width, height := root.X1-root.X0, root.Y1-root.Y0

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		root.X0, root.Y0, width, height, width, height)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(doc.Source))
	fmt.Fprintf(&buf, "  <style>.node text { font: %.0fpx sans-serif; fill: #000; }</style>\n", r.font)

	colors := &ordinal{index: make(map[string]int)}
	walkLeaves(root, nil, func(leaf, parent *tmap.Node) {
		key := leaf.Data.Name
		if parent != nil {
			key = parent.Data.Name
		}
		r.renderLeaf(&buf, leaf, colors.color(key))
	})

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderLeaf(buf *bytes.Buffer, n *tmap.Node, fill string) {
	w := math.Max(0, n.X1-n.X0-1)
	h := math.Max(0, n.Y1-n.Y0-1)
	name := html.EscapeString(n.Data.Name)

	fmt.Fprintf(buf, `  <g class="node"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s</title></rect>`,
		n.X0, n.Y0, w, h, fill, name)
	if r.labels && w > 0 && h >= r.font {
		fmt.Fprintf(buf, `<text x="%.2f" y="%.2f">%s</text>`, n.X0+2, n.Y0+r.font+1, name)
	}
	buf.WriteString("</g>\n")
}

func walkLeaves(n, parent *tmap.Node, fn func(leaf, parent *tmap.Node)) {
	if n.IsLeaf() {
		fn(n, parent)
		return
	}
	for _, c := range n.Children {
		walkLeaves(c, n, fn)
	}
}
