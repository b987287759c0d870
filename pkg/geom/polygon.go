package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D coordinate in micrometres.
type Point = r2.Vec

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Tag selects the fabrication mask a polygon belongs to.
type Tag struct {
	Layer    int `json:"layer" toml:"layer" yaml:"layer"`
	Datatype int `json:"datatype" toml:"datatype" yaml:"datatype"`
}

// Polygon is a closed outline with optional holes and a layer tag. The outer
// ring does not repeat its first vertex.
type Polygon struct {
	Points []Point
	Holes  [][]Point
	Tag
}

// NewPolygon returns an untagged polygon with the given outer ring.
func NewPolygon(pts ...Point) Polygon {
	return Polygon{Points: append([]Point(nil), pts...)}
}

// Clone returns a deep copy of p.
func (p Polygon) Clone() Polygon {
	out := Polygon{Points: append([]Point(nil), p.Points...), Tag: p.Tag}
	if len(p.Holes) > 0 {
		out.Holes = make([][]Point, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = append([]Point(nil), h...)
		}
	}
	return out
}

// Degenerate reports whether the outer ring cannot enclose any area.
func (p Polygon) Degenerate() bool {
	return len(p.Points) < 3 || math.Abs(RingArea(p.Points)) < areaEpsilon
}

// Rings returns the outer ring followed by the holes.
func (p Polygon) Rings() [][]Point {
	rings := make([][]Point, 0, 1+len(p.Holes))
	rings = append(rings, p.Points)
	return append(rings, p.Holes...)
}

// WithTag returns a copy of p carrying tag t.
func (p Polygon) WithTag(t Tag) Polygon {
	out := p.Clone()
	out.Tag = t
	return out
}

// Area returns the enclosed area, holes excluded.
func (p Polygon) Area() float64 {
	a := math.Abs(RingArea(p.Points))
	for _, h := range p.Holes {
		a -= math.Abs(RingArea(h))
	}
	return a
}

// Centroid returns the area centroid of p. Degenerate polygons fall back to
// the mean of their vertices.
func (p Polygon) Centroid() Point {
	var cx, cy, area float64
	for i, ring := range p.Rings() {
		a := RingArea(ring)
		c := ringCentroid(ring, a)
		// holes count negatively regardless of their winding
		w := math.Abs(a)
		if i > 0 {
			w = -w
		}
		cx += c.X * w
		cy += c.Y * w
		area += w
	}
	if math.Abs(area) < areaEpsilon {
		return vertexMean(p.Points)
	}
	return Pt(cx/area, cy/area)
}

// BBox returns the bounding box of the outer ring.
func (p Polygon) BBox() Box {
	return boxOf(p.Points)
}

// Translate returns p shifted by d.
func (p Polygon) Translate(d Point) Polygon {
	return p.mapPoints(func(q Point) Point { return r2.Add(q, d) })
}

// Scale returns p scaled by (sx, sy) about center.
func (p Polygon) Scale(sx, sy float64, center Point) Polygon {
	return p.mapPoints(func(q Point) Point {
		return Pt(center.X+(q.X-center.X)*sx, center.Y+(q.Y-center.Y)*sy)
	})
}

// Rotate returns p rotated by theta radians about center.
func (p Polygon) Rotate(theta float64, center Point) Polygon {
	return p.mapPoints(func(q Point) Point { return r2.Rotate(q, theta, center) })
}

// Transform returns p mapped through a.
func (p Polygon) Transform(a Affine) Polygon {
	return p.mapPoints(a.Apply)
}

// Contains reports whether pt lies inside p using the even-odd rule over all
// rings. Points on an edge may report either way.
func (p Polygon) Contains(pt Point) bool {
	inside := false
	for _, ring := range p.Rings() {
		if ringContains(ring, pt) {
			inside = !inside
		}
	}
	return inside
}

func (p Polygon) mapPoints(f func(Point) Point) Polygon {
	out := Polygon{Points: make([]Point, len(p.Points)), Tag: p.Tag}
	for i, q := range p.Points {
		out.Points[i] = f(q)
	}
	if len(p.Holes) > 0 {
		out.Holes = make([][]Point, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = make([]Point, len(h))
			for j, q := range h {
				out.Holes[i][j] = f(q)
			}
		}
	}
	return out
}

const areaEpsilon = 1e-12

// RingArea returns the signed shoelace area of ring; counter-clockwise rings
// are positive.
func RingArea(ring []Point) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var s float64
	for i := range ring {
		j := (i + 1) % n
		s += r2.Cross(ring[i], ring[j])
	}
	return s / 2
}

// Reversed returns ring with its vertex order reversed.
func Reversed(ring []Point) []Point {
	out := make([]Point, len(ring))
	for i, q := range ring {
		out[len(ring)-1-i] = q
	}
	return out
}

func ringCentroid(ring []Point, area float64) Point {
	if math.Abs(area) < areaEpsilon {
		return vertexMean(ring)
	}
	var cx, cy float64
	n := len(ring)
	for i := range ring {
		j := (i + 1) % n
		c := r2.Cross(ring[i], ring[j])
		cx += (ring[i].X + ring[j].X) * c
		cy += (ring[i].Y + ring[j].Y) * c
	}
	return Pt(cx/(6*area), cy/(6*area))
}

func vertexMean(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var s Point
	for _, q := range pts {
		s = r2.Add(s, q)
	}
	return r2.Scale(1/float64(len(pts)), s)
}

func ringContains(ring []Point, pt Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
