package devices

import (
	"fmt"

	"github.com/matzehuels/masktower/pkg/builder"
	"github.com/matzehuels/masktower/pkg/clearance"
	"github.com/matzehuels/masktower/pkg/feature"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

// Layer names used by FerroTest. Only "mesa" is required.
const (
	LayerMesa         = "mesa"
	LayerVia          = "via"
	LayerTopElectrode = "top_electrode"
)

const ferroElectrodeGap = 1.0

// FerroTest is a ferroelectric capacitor test device: an octagonal mesa,
// an optional via through the passivation and an optional top electrode.
// The bottom contact is made elsewhere.
type FerroTest struct {
	*feature.Base
	via clearance.Clearance
}

// NewFerroTest returns a FerroTest with a 200x250 footprint unless
// overridden.
func NewFerroTest(layers format.LayerMap, k kernel.Kernel, opts ...Option) (*FerroTest, error) {
	if err := requireLayers(layers, "FerroTest", LayerMesa); err != nil {
		return nil, err
	}
	o := collect(opts)
	bounds := o.boundsOr(geom.Rectangle(200, 250, geom.Point{}))
	return &FerroTest{
		Base: feature.NewBase(library.MustName("FerroTestBase"), layers, bounds, k),
		via:  clearance.Uniform(2),
	}, nil
}

// Build takes one parameter, the mesa size in micrometres.
func (d *FerroTest) Build(p feature.Params) (*library.Cell, feature.AccessMap, error) {
	size, err := p.Float(0)
	if err != nil {
		return nil, nil, err
	}
	cell, err := d.NewCell(fmt.Sprintf("FerroTest_%d", int(size*1e3)))
	if err != nil {
		return nil, nil, err
	}

	mesa := geom.Octagon(size, size, geom.Point{}, 0)
	shapes, err := d.Format(LayerMesa, []geom.Polygon{mesa})
	if err != nil {
		return nil, nil, err
	}
	cell.AddPolygons(shapes...)

	if d.HasLayer(LayerVia) {
		via, err := builder.BuildVia(d.Kernel(), mesa, d.via)
		if err != nil {
			return nil, nil, err
		}
		if shapes, err = d.Format(LayerVia, via); err != nil {
			return nil, nil, err
		}
		cell.AddPolygons(shapes...)
	}

	if d.HasLayer(LayerTopElectrode) {
		top, err := d.Kernel().Offset([]geom.Polygon{mesa}, -ferroElectrodeGap)
		if err != nil {
			return nil, nil, err
		}
		if shapes, err = d.Format(LayerTopElectrode, top); err != nil {
			return nil, nil, err
		}
		cell.AddPolygons(shapes...)
	}

	return cell.Build(), feature.AccessMap{
		"mesa":           mesa,
		"mesa_area":      mesa.Area(),
		feature.LabelPos: geom.Pt(0, 100),
	}, nil
}
