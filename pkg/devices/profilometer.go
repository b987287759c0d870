package devices

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/masktower/pkg/feature"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

// ProfilometerTest exposes one large rectangle on a single layer so its
// step height can be measured. It is usually arrayed over every layer key.
type ProfilometerTest struct {
	*feature.Base
	dim geom.Point
}

// NewProfilometerTest returns a profilometer device with a 100x100
// measurement area in a 150x150 footprint. Isolation is switched off on a
// copy of layers, since a border would be too thin to probe.
func NewProfilometerTest(layers format.LayerMap, k kernel.Kernel, opts ...Option) (*ProfilometerTest, error) {
	o := collect(opts)
	dim := geom.Pt(100, 100)
	if o.dim != nil {
		dim = *o.dim
	}
	var err error
	plain := layers.Map(func(name string, r format.LayerRule) format.LayerRule {
		if r.IsolateWidth() == 0 || err != nil {
			return r
		}
		out, rerr := r.New(format.Isolate(0))
		if rerr != nil {
			err = fmt.Errorf("layer %q: %w", name, rerr)
			return r
		}
		return out
	})
	if err != nil {
		return nil, err
	}
	bounds := o.boundsOr(geom.Rectangle(150, 150, geom.Point{}))
	return &ProfilometerTest{
		Base: feature.NewBase(library.MustName("ProfilometerTest"), plain, bounds, k),
		dim:  dim,
	}, nil
}

// Build takes one parameter, the layer key.
func (d *ProfilometerTest) Build(p feature.Params) (*library.Cell, feature.AccessMap, error) {
	key, err := p.Text(0)
	if err != nil {
		return nil, nil, err
	}
	rule, err := d.Layers().Rule(key)
	if err != nil {
		return nil, nil, err
	}
	cell, err := d.NewCell(fmt.Sprintf("ProfilometerTest_L%d_%s", rule.Layer(), key))
	if err != nil {
		return nil, nil, err
	}

	parts := []geom.Polygon{geom.Rectangle(d.dim.X, d.dim.Y, geom.Pt(0, -15))}
	label, err := feature.Label(d.Kernel(), strconv.Itoa(rule.Layer()), feature.LabelStyle{}, geom.Pt(0, 60), geom.Tag{})
	if err != nil {
		return nil, nil, err
	}
	shapes, err := d.FormatRule(rule, parts, label)
	if err != nil {
		return nil, nil, err
	}
	cell.AddPolygons(shapes...)

	return cell.Build(), feature.AccessMap{feature.LabelPos: geom.Pt(0, 0)}, nil
}
