package pipeline

import (
	"github.com/matzehuels/vastmap/pkg/render"
	"github.com/matzehuels/vastmap/pkg/tmap"
)

func renderSVG(doc *tmap.Document) []byte {
	return render.RenderSVG(doc)
}
