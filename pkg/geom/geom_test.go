package geom

import (
	"math"
	"testing"
)

const tol = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < tol }

func nearPt(a, b Point) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestRectangle(t *testing.T) {
	r := Rectangle(4, 2, Pt(1, 1))
	if got := r.Area(); !near(got, 8) {
		t.Errorf("Area() = %v, want 8", got)
	}
	b := r.BBox()
	if !nearPt(b.Min, Pt(-1, 0)) || !nearPt(b.Max, Pt(3, 2)) {
		t.Errorf("BBox() = %+v, want (-1,0)-(3,2)", b)
	}
	if c := r.Centroid(); !nearPt(c, Pt(1, 1)) {
		t.Errorf("Centroid() = %v, want (1,1)", c)
	}
}

func TestOctagon(t *testing.T) {
	o := Octagon(6, 6, Pt(0, 0), 0)
	if len(o.Points) != 8 {
		t.Fatalf("len(Points) = %d, want 8", len(o.Points))
	}
	// default ratio 1/6 cuts each corner by a 1x1 triangle on a 6x6 square
	if got := o.Area(); !near(got, 36-4*0.5) {
		t.Errorf("Area() = %v, want %v", got, 36-4*0.5)
	}
	if first := o.Points[0]; !nearPt(first, Pt(2, 3)) {
		t.Errorf("Points[0] = %v, want (2,3)", first)
	}
	if b := o.BBox(); !near(b.Width(), 6) || !near(b.Height(), 6) {
		t.Errorf("BBox() size = %v, want 6x6", b.Size())
	}
}

func TestPolygonWithHole(t *testing.T) {
	p := Rectangle(10, 10, Pt(0, 0))
	p.Holes = [][]Point{Rectangle(2, 2, Pt(0, 0)).Points}

	if got := p.Area(); !near(got, 96) {
		t.Errorf("Area() = %v, want 96", got)
	}
	if p.Contains(Pt(0, 0)) {
		t.Error("Contains(hole centre) = true, want false")
	}
	if !p.Contains(Pt(3, 3)) {
		t.Error("Contains(3,3) = false, want true")
	}
	if c := p.Centroid(); !nearPt(c, Pt(0, 0)) {
		t.Errorf("Centroid() = %v, want origin", c)
	}
}

func TestTransformsDoNotMutate(t *testing.T) {
	p := Rectangle(2, 2, Pt(0, 0))
	orig := p.Clone()

	_ = p.Translate(Pt(5, 5))
	_ = p.Scale(2, 3, Pt(0, 0))
	_ = p.Rotate(math.Pi/2, Pt(0, 0))
	_ = p.WithTag(Tag{Layer: 3})

	for i := range p.Points {
		if p.Points[i] != orig.Points[i] {
			t.Fatalf("input mutated at %d: %v != %v", i, p.Points[i], orig.Points[i])
		}
	}
	if p.Tag != (Tag{}) {
		t.Errorf("input tag mutated: %+v", p.Tag)
	}
}

func TestScale(t *testing.T) {
	p := Rectangle(2, 2, Pt(1, 1)).Scale(2, 0.5, Pt(1, 1))
	b := p.BBox()
	if !near(b.Width(), 4) || !near(b.Height(), 1) {
		t.Errorf("scaled size = %v, want 4x1", b.Size())
	}
	if !nearPt(b.Center(), Pt(1, 1)) {
		t.Errorf("scaled centre = %v, want (1,1)", b.Center())
	}
}

func TestAffine(t *testing.T) {
	tests := []struct {
		name string
		a    Affine
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translation", Translation(Pt(1, -2)), Pt(3, 4), Pt(4, 2)},
		{"rotation origin", Rotation(math.Pi/2, Pt(0, 0)), Pt(1, 0), Pt(0, 1)},
		{"rotation about point", Rotation(math.Pi, Pt(1, 1)), Pt(2, 1), Pt(0, 1)},
		{"scaling", Scaling(2, 3, Pt(1, 1)), Pt(2, 2), Pt(3, 4)},
		{"composed", Translation(Pt(1, 0)).Then(Rotation(math.Pi/2, Pt(0, 0))), Pt(0, 0), Pt(0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Apply(tt.in); !nearPt(got, tt.want) {
				t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBox(t *testing.T) {
	a := NewBox(Pt(2, 2), Pt(0, 0))
	b := NewBox(Pt(1, 1), Pt(3, 3))
	c := NewBox(Pt(2, 0), Pt(4, 1))

	if !a.Overlaps(b) {
		t.Error("a.Overlaps(b) = false, want true")
	}
	if a.Overlaps(c) {
		t.Error("touching boxes should not overlap")
	}
	if u := a.Union(b); u != NewBox(Pt(0, 0), Pt(3, 3)) {
		t.Errorf("Union() = %+v", u)
	}
	if !a.Contains(NewBox(Pt(0.5, 0.5), Pt(1, 1))) {
		t.Error("Contains(inner) = false, want true")
	}
	if !EmptyBox().Empty() {
		t.Error("EmptyBox().Empty() = false")
	}
	if got := Bounds(); !got.Empty() {
		t.Errorf("Bounds() of nothing = %+v, want empty", got)
	}
	if got := Bounds(a.Polygon(), c.Polygon()); got != NewBox(Pt(0, 0), Pt(4, 2)) {
		t.Errorf("Bounds() = %+v", got)
	}
}

func TestConnectRectangles(t *testing.T) {
	a := Rectangle(2, 2, Pt(0, 0))
	right := Rectangle(2, 2, Pt(10, 0))

	got := ConnectRectangles(a, right)
	want := []Point{Pt(1, -1), Pt(9, -1), Pt(9, 1), Pt(1, 1)}
	for i := range want {
		if !nearPt(got.Points[i], want[i]) {
			t.Errorf("Points[%d] = %v, want %v", i, got.Points[i], want[i])
		}
	}
	if !near(got.Area(), 16) {
		t.Errorf("Area() = %v, want 16", got.Area())
	}
}

func TestRingArea(t *testing.T) {
	ccw := []Point{Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1)}
	if got := RingArea(ccw); !near(got, 1) {
		t.Errorf("RingArea(ccw) = %v, want 1", got)
	}
	if got := RingArea(Reversed(ccw)); !near(got, -1) {
		t.Errorf("RingArea(cw) = %v, want -1", got)
	}
	if !NewPolygon(Pt(0, 0), Pt(1, 1)).Degenerate() {
		t.Error("two-point polygon should be degenerate")
	}
}
