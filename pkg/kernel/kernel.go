// Package kernel defines the polygon geometry capability the layout engine
// calls into, and ships Planar, the default implementation.
//
// The engine never manipulates polygon internals itself. Every boolean,
// offset and text operation goes through the [Kernel] interface so that the
// clearance algebra, the layer formatter and the array builder can be
// exercised against any backend.
//
// # Semantics
//
// Operands of [Kernel.Boolean] are dissolved before combining: overlapping
// input polygons count once. Results are untagged, normalized so that outer
// rings wind counter-clockwise and holes clockwise, and contain no
// zero-area pieces. Shapes that vanish during an offset are dropped and
// logged at debug level.
package kernel

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masktower/pkg/geom"
)

// Op selects a boolean set operation.
type Op int

const (
	And Op = iota // intersection
	Or            // union
	Not           // a minus b
	Xor           // symmetric difference
)

// String returns the lowercase operation name.
func (o Op) String() string {
	switch o {
	case And:
		return "and"
	case Or:
		return "or"
	case Not:
		return "not"
	case Xor:
		return "xor"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// TextStyle controls text rendering. Size is the em size in micrometres.
// Vertical stacks glyphs downwards instead of advancing to the right.
type TextStyle struct {
	Size     float64
	Vertical bool
}

// Kernel is the polygon geometry capability.
type Kernel interface {
	// Boolean combines a and b with op.
	Boolean(a, b []geom.Polygon, op Op) ([]geom.Polygon, error)

	// Offset grows (distance > 0) or shrinks (distance < 0) the union of
	// shapes by distance using mitred corners.
	Offset(shapes []geom.Polygon, distance float64) ([]geom.Polygon, error)

	// Text renders s as glyph outlines with the first baseline at y = 0 and
	// the first glyph starting at x = 0.
	Text(s string, style TextStyle) ([]geom.Polygon, error)

	// Logger receives geometry diagnostics.
	Logger() *log.Logger
}

// Heal merges overlapping shapes into a non-overlapping set.
func Heal(k Kernel, shapes []geom.Polygon) ([]geom.Polygon, error) {
	return k.Boolean(shapes, nil, Or)
}

// XorMerge folds shapes together with symmetric difference, so regions
// covered an even number of times cancel.
func XorMerge(k Kernel, shapes []geom.Polygon) ([]geom.Polygon, error) {
	var acc []geom.Polygon
	for _, s := range shapes {
		var err error
		if acc, err = k.Boolean(acc, []geom.Polygon{s}, Xor); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Area returns the summed area of shapes.
func Area(shapes []geom.Polygon) float64 {
	var a float64
	for _, s := range shapes {
		a += s.Area()
	}
	return a
}

// Fracture splits p into hole-free pieces by cutting vertically through each
// hole. The pieces keep p's tag and cover exactly the same region.
func Fracture(k Kernel, p geom.Polygon) ([]geom.Polygon, error) {
	if len(p.Holes) == 0 {
		return []geom.Polygon{p}, nil
	}

	hb := geom.NewPolygon(p.Holes[0]...).BBox()
	x := hb.Center().X
	frame := p.BBox().Grow(1, 1)
	halves := []geom.Polygon{
		geom.Corners(frame.Min, geom.Pt(x, frame.Max.Y)),
		geom.Corners(geom.Pt(x, frame.Min.Y), frame.Max),
	}

	var out []geom.Polygon
	for _, half := range halves {
		pieces, err := k.Boolean([]geom.Polygon{p}, []geom.Polygon{half}, And)
		if err != nil {
			return nil, fmt.Errorf("fracture: %w", err)
		}
		for _, piece := range pieces {
			piece.Tag = p.Tag
			sub, err := Fracture(k, piece)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}
