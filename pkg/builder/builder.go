// Package builder tiles small openings across larger regions. It provides
// the grid packing used for via subdivision and the via builder itself.
package builder

import (
	"fmt"
	"math"

	"github.com/matzehuels/masktower/pkg/clearance"
	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

// containEpsilon is the uncovered area below which a via counts as fully
// inside its region.
const containEpsilon = 1e-9

// Pack returns the centres of the largest grid of unit boxes, separated by
// at least separation, that fits into container. Each axis holds
// max(floor(extent/(unit+separation)), 1) units and the grid is centred on
// the container, so the result is symmetric about the container centre.
// Positions are ordered x-outer, y-inner.
func Pack(container, unit geom.Box, separation float64) []geom.Point {
	px := unit.Width() + separation
	py := unit.Height() + separation
	nx := count(container.Width(), px)
	ny := count(container.Height(), py)
	c := container.Center()

	out := make([]geom.Point, 0, nx*ny)
	for i := 0; i < nx; i++ {
		x := c.X + (float64(i)-float64(nx-1)/2)*px
		for j := 0; j < ny; j++ {
			y := c.Y + (float64(j)-float64(ny-1)/2)*py
			out = append(out, geom.Pt(x, y))
		}
	}
	return out
}

func count(extent, pitch float64) int {
	if pitch <= 0 {
		return 1
	}
	return max(int(math.Floor(extent/pitch)), 1)
}

type viaConfig struct {
	subdivision *geom.Polygon
	cell        *library.Cell
	separation  float64
}

// ViaOption configures BuildVia.
type ViaOption func(*viaConfig)

// WithSubdivision tiles copies of unit across the via region instead of
// returning one large opening.
func WithSubdivision(unit geom.Polygon) ViaOption {
	return func(c *viaConfig) {
		u := unit.Clone()
		c.subdivision = &u
	}
}

// WithCellSubdivision tiles references to cell. Not supported yet.
func WithCellSubdivision(cell *library.Cell) ViaOption {
	return func(c *viaConfig) { c.cell = cell }
}

// WithSeparation sets the gap between subdivision units. The default is
// half the larger side of the unit.
func WithSeparation(d float64) ViaOption {
	return func(c *viaConfig) { c.separation = d }
}

// BuildVia returns the via opening for shape: the shape shrunk by cl, or,
// with WithSubdivision, the unit copies packed into the shrunk region's
// bounding box that lie fully inside the region. Partially overlapping
// copies are discarded, not clipped. Results carry shape's tag.
func BuildVia(k kernel.Kernel, shape geom.Polygon, cl clearance.Clearance, opts ...ViaOption) ([]geom.Polygon, error) {
	cfg := viaConfig{separation: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cell != nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "via subdivision by cell %q", cfg.cell.Name())
	}

	shrunk, err := cl.Apply(k, shape, -1)
	if err != nil {
		return nil, fmt.Errorf("via region: %w", err)
	}
	if cfg.subdivision == nil {
		return shrunk, nil
	}

	unit := cfg.subdivision.BBox()
	sep := cfg.separation
	if sep < 0 {
		sep = math.Max(unit.Width(), unit.Height()) / 2
	}

	var vias []geom.Polygon
	for _, region := range shrunk {
		for _, pos := range Pack(region.BBox(), unit, sep) {
			d := geom.Pt(pos.X-unit.Center().X, pos.Y-unit.Center().Y)
			inst := cfg.subdivision.Translate(d).WithTag(shape.Tag)
			outside, err := k.Boolean([]geom.Polygon{inst}, []geom.Polygon{region}, kernel.Not)
			if err != nil {
				return nil, fmt.Errorf("via containment: %w", err)
			}
			if kernel.Area(outside) < containEpsilon {
				vias = append(vias, inst)
			}
		}
	}
	if len(vias) == 0 {
		k.Logger().Debug("no via unit fits into region", "unit_w", unit.Width(), "unit_h", unit.Height())
	}
	return vias, nil
}
