package devices

import (
	"fmt"

	"github.com/matzehuels/masktower/pkg/feature"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

// LayerMetal is the default layer of MetalLine.
const LayerMetal = "metal"

const (
	padSize    = 80.0
	padSpacing = 20.0
	padCount   = 4
)

// MetalLine is a four-probe line resistance structure: a row of probe pads
// above a metal line of the requested length and width.
type MetalLine struct {
	*feature.Base
	layer string
}

// NewMetalLine returns a MetalLine with a 5000x300 footprint unless
// overridden.
func NewMetalLine(layers format.LayerMap, k kernel.Kernel, opts ...Option) (*MetalLine, error) {
	o := collect(opts)
	layer := o.layer
	if layer == "" {
		layer = LayerMetal
	}
	if err := requireLayers(layers, "MetalLine", layer); err != nil {
		return nil, err
	}
	bounds := o.boundsOr(geom.Rectangle(5000, 300, geom.Point{}))
	return &MetalLine{
		Base:  feature.NewBase(library.MustName("MetalLineBase"), layers, bounds, k),
		layer: layer,
	}, nil
}

// Build takes one parameter, the (length, width) pair of the line.
func (d *MetalLine) Build(p feature.Params) (*library.Cell, feature.AccessMap, error) {
	lw, err := p.Pair(0)
	if err != nil {
		return nil, nil, err
	}
	cell, err := d.NewCell(fmt.Sprintf("MetalLine_%dx%d", int(lw.X*1e3), int(lw.Y*1e3)))
	if err != nil {
		return nil, nil, err
	}

	pads := make([]geom.Polygon, 0, padCount)
	for i := 0; i < padCount; i++ {
		x := padSize/2 + float64(i)*(padSize+padSpacing)
		pads = append(pads, geom.Rectangle(padSize, padSize, geom.Pt(x, padSize/2)))
	}
	rowCentre := (pads[0].BBox().Min.X + pads[padCount-1].BBox().Max.X) / 2
	line := geom.Rectangle(lw.X, lw.Y, geom.Pt(rowCentre, -padSpacing-lw.Y/2))

	shapes, err := d.Format(d.layer, pads, []geom.Polygon{line})
	if err != nil {
		return nil, nil, err
	}
	cell.AddPolygons(shapes...)

	return cell.Build(), feature.AccessMap{
		"pads":           pads,
		feature.LabelPos: geom.Pt(rowCentre, padSize+25),
	}, nil
}
