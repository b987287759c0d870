// Package clearance models lithography and process clearances: a fixed
// offset distance combined with a percentage scale about the shape's
// centroid.
//
// A clearance is applied in two steps. The shape is first scaled by
// (1 + sign*px, 1 + sign*py) about its centroid, then offset by
// sign*fixed. Sign +1 grows, -1 shrinks. Sign 0 skips the scale step and
// offsets by zero, which only heals the input.
//
// Clearances compose with [Clearance.Add], [Clearance.Subtract] and
// [Clearance.Scale]. Both the fixed and the percent components combine
// additively.
package clearance

import (
	"fmt"
	"math"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
)

// Clearance is an immutable fixed-plus-percent adjustment. Fixed is in
// micrometres; Percent is a fraction (0.2 grows by 20%).
type Clearance struct {
	Fixed   geom.Point `json:"fixed" toml:"fixed" yaml:"fixed"`
	Percent geom.Point `json:"percent" toml:"percent" yaml:"percent"`
}

// Uniform returns a fixed clearance of d on both axes.
func Uniform(d float64) Clearance {
	return Clearance{Fixed: geom.Pt(d, d)}
}

// New returns a clearance with explicit per-axis components.
func New(fx, fy, px, py float64) Clearance {
	return Clearance{Fixed: geom.Pt(fx, fy), Percent: geom.Pt(px, py)}
}

// Percent returns a clearance with only a percentage component.
func Percent(px, py float64) Clearance {
	return Clearance{Percent: geom.Pt(px, py)}
}

// Add returns the component-wise sum of c and o.
func (c Clearance) Add(o Clearance) Clearance {
	return New(c.Fixed.X+o.Fixed.X, c.Fixed.Y+o.Fixed.Y, c.Percent.X+o.Percent.X, c.Percent.Y+o.Percent.Y)
}

// Subtract returns the component-wise difference c - o.
func (c Clearance) Subtract(o Clearance) Clearance {
	return New(c.Fixed.X-o.Fixed.X, c.Fixed.Y-o.Fixed.Y, c.Percent.X-o.Percent.X, c.Percent.Y-o.Percent.Y)
}

// Scale returns c with both components multiplied by f.
func (c Clearance) Scale(f float64) Clearance {
	return New(c.Fixed.X*f, c.Fixed.Y*f, c.Percent.X*f, c.Percent.Y*f)
}

// IsUniform reports whether the fixed component is the same on both axes.
func (c Clearance) IsUniform() bool { return c.Fixed.X == c.Fixed.Y }

func (c Clearance) String() string {
	return fmt.Sprintf("clearance(fixed=%g,%g percent=%g,%g)", c.Fixed.X, c.Fixed.Y, c.Percent.X, c.Percent.Y)
}

// Apply returns shape with the clearance applied. Non-uniform fixed
// clearances cannot follow an arbitrary outline, so the larger magnitude is
// used on both axes and a warning is logged; use [Clearance.BBox] for
// anisotropic clearances. The result keeps the shape's tag.
func (c Clearance) Apply(k kernel.Kernel, shape geom.Polygon, sign int) ([]geom.Polygon, error) {
	if err := checkSign(sign); err != nil {
		return nil, err
	}
	d := c.Fixed.X
	if !c.IsUniform() {
		if math.Abs(c.Fixed.Y) > math.Abs(d) {
			d = c.Fixed.Y
		}
		k.Logger().Warn("non-uniform fixed clearance on an arbitrary outline, using the larger value",
			"fixed_x", c.Fixed.X, "fixed_y", c.Fixed.Y, "used", d)
	}

	scaled := c.scale(k, shape, sign)
	out, err := k.Offset([]geom.Polygon{scaled}, float64(sign)*d)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", c, err)
	}
	return retag(out, shape.Tag), nil
}

// BBox returns the bounding rectangle of the scaled shape grown by
// sign*fixed on each axis independently. Sign 0 is not supported.
func (c Clearance) BBox(k kernel.Kernel, shape geom.Polygon, sign int) (geom.Polygon, error) {
	if err := checkSign(sign); err != nil {
		return geom.Polygon{}, err
	}
	if sign == 0 {
		return geom.Polygon{}, errors.New(errors.ErrCodeUnsupported, "symmetric (sign 0) clearance bounding box")
	}
	s := float64(sign)
	b := c.scale(k, shape, sign).BBox().Grow(s*c.Fixed.X, s*c.Fixed.Y)
	if b.Empty() {
		k.Logger().Debug("clearance bounding box vanished", "clearance", c.String())
		return geom.Polygon{}, nil
	}
	return b.Polygon().WithTag(shape.Tag), nil
}

// ApplyAll applies the clearance to each shape. With xor set, the results
// are folded together by symmetric difference instead of concatenated.
func (c Clearance) ApplyAll(k kernel.Kernel, shapes []geom.Polygon, sign int, xor bool) ([]geom.Polygon, error) {
	var out []geom.Polygon
	for _, s := range shapes {
		cleared, err := c.Apply(k, s, sign)
		if err != nil {
			return nil, err
		}
		if out, err = accumulate(k, out, cleared, xor); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BBoxAll is ApplyAll for [Clearance.BBox].
func (c Clearance) BBoxAll(k kernel.Kernel, shapes []geom.Polygon, sign int, xor bool) ([]geom.Polygon, error) {
	var out []geom.Polygon
	for _, s := range shapes {
		b, err := c.BBox(k, s, sign)
		if err != nil {
			return nil, err
		}
		if b.Degenerate() {
			continue
		}
		if out, err = accumulate(k, out, []geom.Polygon{b}, xor); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Boundary returns the clearance band alone: the grown shape minus the
// shape for sign +1, the shape minus the shrunk shape otherwise.
func (c Clearance) Boundary(k kernel.Kernel, shape geom.Polygon, sign int) ([]geom.Polygon, error) {
	cleared, err := c.Apply(k, shape, sign)
	if err != nil {
		return nil, err
	}
	orig := []geom.Polygon{shape}
	var out []geom.Polygon
	if sign == 1 {
		out, err = k.Boolean(cleared, orig, kernel.Not)
	} else {
		out, err = k.Boolean(orig, cleared, kernel.Not)
	}
	if err != nil {
		return nil, fmt.Errorf("boundary %s: %w", c, err)
	}
	return retag(out, shape.Tag), nil
}

// FillToBBox returns bbox with the grown shapes removed. With excludeShapes
// false only the clearance band around each shape is removed, so the
// shapes themselves stay part of the fill.
func (c Clearance) FillToBBox(k kernel.Kernel, shapes []geom.Polygon, bbox geom.Polygon, excludeShapes bool) ([]geom.Polygon, error) {
	result := []geom.Polygon{bbox}
	for _, s := range shapes {
		var cut []geom.Polygon
		var err error
		if excludeShapes {
			cut, err = c.Apply(k, s, 1)
		} else {
			cut, err = c.Boundary(k, s, 1)
		}
		if err != nil {
			return nil, err
		}
		if result, err = k.Boolean(result, cut, kernel.Not); err != nil {
			return nil, fmt.Errorf("fill to bbox: %w", err)
		}
	}
	return retag(result, bbox.Tag), nil
}

func (c Clearance) scale(k kernel.Kernel, shape geom.Polygon, sign int) geom.Polygon {
	if sign == 0 {
		k.Logger().Info("no scaling applied for sign 0", "clearance", c.String())
		return shape
	}
	if c.Percent.X == 0 && c.Percent.Y == 0 {
		return shape
	}
	s := float64(sign)
	return shape.Scale(1+s*c.Percent.X, 1+s*c.Percent.Y, shape.Centroid())
}

func checkSign(sign int) error {
	if sign < -1 || sign > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "clearance sign must be -1, 0 or 1, got %d", sign)
	}
	return nil
}

func accumulate(k kernel.Kernel, acc, next []geom.Polygon, xor bool) ([]geom.Polygon, error) {
	if !xor {
		return append(acc, next...), nil
	}
	out, err := k.Boolean(acc, next, kernel.Xor)
	if err != nil {
		return nil, fmt.Errorf("xor accumulate: %w", err)
	}
	return out, nil
}

func retag(ps []geom.Polygon, t geom.Tag) []geom.Polygon {
	for i := range ps {
		ps[i].Tag = t
	}
	return ps
}
