package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/library"
)

// maxPageSide bounds the longer page side in points when no scale is set.
const maxPageSide = 1000.0

type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	scale   float64
	padding float64
	colors  LayerColors
	opacity float64
	title   string
}

func WithPDFScale(s float64) PDFOption           { return func(r *pdfRenderer) { r.scale = s } }
func WithPDFLayerColors(c LayerColors) PDFOption { return func(r *pdfRenderer) { r.colors = c } }
func WithTitle(t string) PDFOption               { return func(r *pdfRenderer) { r.title = t } }

// RenderPDF draws cell on a single page sized to its bounding box. Without
// WithPDFScale the drawing is scaled to fit a 1000 pt page.
func RenderPDF(cell *library.Cell, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{padding: 10, opacity: 0.6, title: cell.Name().String()}
	for _, opt := range opts {
		opt(&r)
	}

	polys := cell.Flatten()
	box := geom.Bounds(polys...)
	if box.Empty() {
		box = geom.NewBox(geom.Pt(0, 0), geom.Pt(0, 0))
	}
	box = box.Grow(r.padding, r.padding)
	if r.scale <= 0 {
		r.scale = maxPageSide / math.Max(box.Width(), box.Height())
	}
	w, h := box.Width()*r.scale, box.Height()*r.scale

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetTitle(r.title, false)
	pdf.SetAuthor("masktower", false)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})
	pdf.SetAlpha(r.opacity, "Normal")

	toPage := func(q geom.Point) (float64, float64) {
		return (q.X - box.Min.X) * r.scale, (box.Max.Y - q.Y) * r.scale
	}
	for _, g := range groupByTag(polys) {
		cr, cg, cb := parseHex(r.colors.color(g.tag))
		pdf.SetFillColor(cr, cg, cb)
		for _, p := range g.polygons {
			for _, ring := range p.Rings() {
				for i, q := range ring {
					x, y := toPage(q)
					if i == 0 {
						pdf.MoveTo(x, y)
					} else {
						pdf.LineTo(x, y)
					}
				}
				pdf.ClosePath()
			}
			pdf.DrawPath("F*")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
