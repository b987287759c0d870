package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/library"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale      float64
	padding    float64
	colors     LayerColors
	background string
	opacity    float64
}

func WithScale(s float64) SVGOption           { return func(r *svgRenderer) { r.scale = s } }
func WithPadding(p float64) SVGOption         { return func(r *svgRenderer) { r.padding = p } }
func WithLayerColors(c LayerColors) SVGOption { return func(r *svgRenderer) { r.colors = c } }
func WithBackground(color string) SVGOption   { return func(r *svgRenderer) { r.background = color } }
func WithOpacity(o float64) SVGOption         { return func(r *svgRenderer) { r.opacity = o } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{scale: 1, padding: 10, opacity: 0.6}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG flattens cell and draws one path group per layer. Layout
// coordinates grow upwards, so y is flipped.
func RenderSVG(cell *library.Cell, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	polys := cell.Flatten()
	box := geom.Bounds(polys...)
	if box.Empty() {
		box = geom.NewBox(geom.Pt(0, 0), geom.Pt(0, 0))
	}
	box = box.Grow(r.padding, r.padding)
	w, h := box.Width()*r.scale, box.Height()*r.scale

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g" width="%.0f" height="%.0f">`+"\n",
		box.Min.X, flipY(box.Max.Y), box.Width(), box.Height(), w, h)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", cell.Name())
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%g" y="%g" width="%g" height="%g" fill="%s"/>`+"\n",
			box.Min.X, flipY(box.Max.Y), box.Width(), box.Height(), r.background)
	}

	for _, g := range groupByTag(polys) {
		fmt.Fprintf(&buf, `  <g id="layer-%d-%d" fill="%s" fill-opacity="%g" fill-rule="evenodd">`+"\n",
			g.tag.Layer, g.tag.Datatype, r.colors.color(g.tag), r.opacity)
		for _, p := range g.polygons {
			fmt.Fprintf(&buf, `    <path d="%s"/>`+"\n", svgPath(p))
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func svgPath(p geom.Polygon) string {
	var b strings.Builder
	for _, ring := range p.Rings() {
		for i, q := range ring {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&b, "%s%g %g ", cmd, q.X, flipY(q.Y))
		}
		b.WriteString("Z ")
	}
	return strings.TrimSpace(b.String())
}

// flipY negates y without producing -0.
func flipY(y float64) float64 {
	if y == 0 {
		return 0
	}
	return -y
}
