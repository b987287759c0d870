package geom

import "math"

// Box is an axis-aligned rectangle. A Box with Min > Max on either axis is
// empty.
type Box struct {
	Min, Max Point
}

// NewBox returns the box spanned by two opposite corners in any order.
func NewBox(a, b Point) Box {
	return Box{
		Min: Pt(math.Min(a.X, b.X), math.Min(a.Y, b.Y)),
		Max: Pt(math.Max(a.X, b.X), math.Max(a.Y, b.Y)),
	}
}

// EmptyBox returns a box that acts as the identity for Union.
func EmptyBox() Box {
	return Box{
		Min: Pt(math.Inf(1), math.Inf(1)),
		Max: Pt(math.Inf(-1), math.Inf(-1)),
	}
}

// Empty reports whether b contains no points.
func (b Box) Empty() bool { return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y }

func (b Box) Width() float64  { return b.Max.X - b.Min.X }
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }

// Size returns (width, height).
func (b Box) Size() Point { return Pt(b.Width(), b.Height()) }

// Center returns the midpoint of b.
func (b Box) Center() Point { return Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2) }

// Polygon returns b as an untagged counter-clockwise rectangle.
func (b Box) Polygon() Polygon {
	return NewPolygon(
		b.Min,
		Pt(b.Max.X, b.Min.Y),
		b.Max,
		Pt(b.Min.X, b.Max.Y),
	)
}

// Translate returns b shifted by d.
func (b Box) Translate(d Point) Box {
	return Box{Min: Pt(b.Min.X+d.X, b.Min.Y+d.Y), Max: Pt(b.Max.X+d.X, b.Max.Y+d.Y)}
}

// Grow returns b expanded by dx on the left and right and dy on the top and
// bottom. Negative values shrink it.
func (b Box) Grow(dx, dy float64) Box {
	return Box{Min: Pt(b.Min.X-dx, b.Min.Y-dy), Max: Pt(b.Max.X+dx, b.Max.Y+dy)}
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Box{
		Min: Pt(math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y)),
		Max: Pt(math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y)),
	}
}

// Contains reports whether o lies entirely within b.
func (b Box) Contains(o Box) bool {
	return o.Min.X >= b.Min.X && o.Max.X <= b.Max.X &&
		o.Min.Y >= b.Min.Y && o.Max.Y <= b.Max.Y
}

// Overlaps reports whether b and o share interior area.
func (b Box) Overlaps(o Box) bool {
	return b.Min.X < o.Max.X && o.Min.X < b.Max.X &&
		b.Min.Y < o.Max.Y && o.Min.Y < b.Max.Y
}

// Bounds returns the bounding box of all outer rings in ps. It is empty when
// ps is empty.
func Bounds(ps ...Polygon) Box {
	b := EmptyBox()
	for _, p := range ps {
		b = b.Union(p.BBox())
	}
	return b
}

func boxOf(pts []Point) Box {
	b := EmptyBox()
	for _, q := range pts {
		b.Min.X = math.Min(b.Min.X, q.X)
		b.Min.Y = math.Min(b.Min.Y, q.Y)
		b.Max.X = math.Max(b.Max.X, q.X)
		b.Max.Y = math.Max(b.Max.Y, q.Y)
	}
	return b
}
