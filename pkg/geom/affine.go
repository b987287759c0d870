package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Affine is a 2D affine transform stored as a 3x3 homogeneous matrix.
// The zero value is not usable; start from Identity or one of the
// constructors.
type Affine struct {
	m *mat.Dense
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// Translation returns a transform shifting by d.
func Translation(d Point) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, d.X,
		0, 1, d.Y,
		0, 0, 1,
	})}
}

// Rotation returns a counter-clockwise rotation by theta radians about c.
func Rotation(theta float64, c Point) Affine {
	sin, cos := math.Sincos(theta)
	r := Affine{m: mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})}
	return Translation(Pt(-c.X, -c.Y)).Then(r).Then(Translation(c))
}

// Scaling returns a transform scaling by (sx, sy) about c.
func Scaling(sx, sy float64, c Point) Affine {
	s := Affine{m: mat.NewDense(3, 3, []float64{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	})}
	return Translation(Pt(-c.X, -c.Y)).Then(s).Then(Translation(c))
}

// Then returns the transform applying a first and b second.
func (a Affine) Then(b Affine) Affine {
	var out mat.Dense
	out.Mul(b.m, a.m)
	return Affine{m: &out}
}

// Apply maps p through a.
func (a Affine) Apply(p Point) Point {
	return Pt(
		a.m.At(0, 0)*p.X+a.m.At(0, 1)*p.Y+a.m.At(0, 2),
		a.m.At(1, 0)*p.X+a.m.At(1, 1)*p.Y+a.m.At(1, 2),
	)
}
