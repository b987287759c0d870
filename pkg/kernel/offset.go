package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/masktower/pkg/geom"
)

// bandPieces returns polygons whose union is the set of points within d of
// the boundary of regions, with mitred corners. Each edge contributes a
// rectangle straddling it; each vertex contributes a join on the outer side
// of its turn, where the two edge rectangles leave a gap.
func bandPieces(regions []geom.Polygon, d, miterLimit float64) []geom.Polygon {
	var pieces []geom.Polygon
	for _, region := range regions {
		for _, ring := range region.Rings() {
			ring = dropDuplicates(ring)
			n := len(ring)
			if n < 3 {
				continue
			}
			for i := 0; i < n; i++ {
				a, b := ring[i], ring[(i+1)%n]
				pieces = append(pieces, edgeBand(a, b, d))
				prev := ring[(i+n-1)%n]
				if j, ok := joinPiece(prev, a, b, d, miterLimit); ok {
					pieces = append(pieces, j)
				}
			}
		}
	}
	return pieces
}

func edgeBand(a, b geom.Point, d float64) geom.Polygon {
	u := r2.Unit(r2.Sub(b, a))
	n := r2.Scale(d, leftNormal(u))
	return geom.NewPolygon(r2.Add(a, n), r2.Sub(a, n), r2.Sub(b, n), r2.Add(b, n))
}

func joinPiece(prev, v, next geom.Point, d, miterLimit float64) (geom.Polygon, bool) {
	u1 := r2.Unit(r2.Sub(v, prev))
	u2 := r2.Unit(r2.Sub(next, v))
	cross := r2.Cross(u1, u2)
	cos := r2.Dot(u1, u2)

	if math.Abs(cross) < 1e-12 && cos > 0 {
		return geom.Polygon{}, false
	}

	// The gap opens on the right of a left turn and on the left of a right turn.
	side := 1.0
	if cross > 0 {
		side = -1
	}
	n1 := r2.Scale(side, leftNormal(u1))
	n2 := r2.Scale(side, leftNormal(u2))
	p1 := r2.Add(v, r2.Scale(d, n1))
	p2 := r2.Add(v, r2.Scale(d, n2))

	if 1+cos < 1e-9 {
		// Full reversal: square cap.
		ext := r2.Scale(d, u1)
		return geom.NewPolygon(p1, r2.Add(p1, ext), r2.Add(p2, ext), p2), true
	}

	if math.Sqrt(2/(1+cos)) > miterLimit {
		bevel := geom.NewPolygon(v, p1, p2)
		return bevel, !bevel.Degenerate()
	}
	m := r2.Add(v, r2.Scale(d/(1+cos), r2.Add(n1, n2)))
	return geom.NewPolygon(v, p1, m, p2), true
}

func leftNormal(u geom.Point) geom.Point { return geom.Pt(-u.Y, u.X) }

func dropDuplicates(ring []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(ring))
	for i, q := range ring {
		if i > 0 && r2.Norm(r2.Sub(q, out[len(out)-1])) < 1e-12 {
			continue
		}
		out = append(out, q)
	}
	for len(out) > 1 && r2.Norm(r2.Sub(out[0], out[len(out)-1])) < 1e-12 {
		out = out[:len(out)-1]
	}
	return out
}
