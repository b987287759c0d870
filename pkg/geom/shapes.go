package geom

import "math"

// DefaultOctagonRatio is the corner cut used by Octagon when ratio <= 0.
const DefaultOctagonRatio = 1.0 / 6.0

// Rectangle returns a w by h rectangle centred on origin.
func Rectangle(w, h float64, origin Point) Polygon {
	return Corners(Pt(origin.X-w/2, origin.Y-h/2), Pt(origin.X+w/2, origin.Y+h/2))
}

// Corners returns the rectangle spanned by two opposite corners.
func Corners(a, b Point) Polygon {
	return NewBox(a, b).Polygon()
}

// Octagon returns an x by y octagon centred on origin. The corners of the
// enclosing rectangle are cut back so that the flat top and bottom edges span
// 4*ratio*x and the flat sides span 4*ratio*y.
func Octagon(x, y float64, origin Point, ratio float64) Polygon {
	if ratio <= 0 {
		ratio = DefaultOctagonRatio
	}
	ox, oy := origin.X, origin.Y
	cx, cy := 2*x*ratio, 2*y*ratio
	return NewPolygon(
		Pt(ox+cx, oy+y/2),
		Pt(ox+x/2, oy+cy),
		Pt(ox+x/2, oy-cy),
		Pt(ox+cx, oy-y/2),
		Pt(ox-cx, oy-y/2),
		Pt(ox-x/2, oy-cy),
		Pt(ox-x/2, oy+cy),
		Pt(ox-cx, oy+y/2),
	)
}

// ConnectRectangles returns the trapezoid joining the facing corners of two
// rectangles. Which corners face each other is decided by the direction from
// a's centre to b's centre, split into 45 degree quadrants.
func ConnectRectangles(a, b Polygon) Polygon {
	ba, bb := a.BBox(), b.BBox()
	d := Point{X: bb.Center().X - ba.Center().X, Y: bb.Center().Y - ba.Center().Y}

	bl := func(x Box) Point { return x.Min }
	br := func(x Box) Point { return Pt(x.Max.X, x.Min.Y) }
	tr := func(x Box) Point { return x.Max }
	tl := func(x Box) Point { return Pt(x.Min.X, x.Max.Y) }

	horizontal := math.Abs(d.X) > math.Abs(d.Y)
	switch {
	case horizontal && d.X >= 0:
		return NewPolygon(br(ba), bl(bb), tl(bb), tr(ba))
	case horizontal:
		return NewPolygon(tl(ba), tr(bb), br(bb), bl(ba))
	case d.Y >= 0:
		return NewPolygon(tr(ba), br(bb), bl(bb), tl(ba))
	default:
		return NewPolygon(bl(ba), tl(bb), tr(bb), br(ba))
	}
}
