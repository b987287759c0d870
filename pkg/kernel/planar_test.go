package kernel

import (
	"math"
	"testing"

	sf "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/masktower/pkg/geom"
)

func square(size float64, at geom.Point) geom.Polygon {
	return geom.Rectangle(size, size, at)
}

func TestBooleanOps(t *testing.T) {
	k := MustPlanar()
	a := []geom.Polygon{square(2, geom.Pt(0, 0))}
	b := []geom.Polygon{square(2, geom.Pt(1, 0))}

	tests := []struct {
		op   Op
		area float64
	}{
		{And, 2},
		{Or, 6},
		{Not, 2},
		{Xor, 4},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := k.Boolean(a, b, tt.op)
			require.NoError(t, err)
			assert.InDelta(t, tt.area, Area(got), 1e-9)
		})
	}
}

func TestBooleanResultShapes(t *testing.T) {
	k := MustPlanar()
	outer := []geom.Polygon{square(10, geom.Pt(0, 0))}

	ring, err := k.Boolean(outer, []geom.Polygon{square(4, geom.Pt(0, 0))}, Not)
	require.NoError(t, err)
	require.Len(t, ring, 1)
	assert.Len(t, ring[0].Holes, 1)
	assert.InDelta(t, 84, Area(ring), 1e-9)

	apart, err := k.Boolean(outer, []geom.Polygon{square(2, geom.Pt(20, 0))}, Or)
	require.NoError(t, err)
	assert.Len(t, apart, 2)
	assert.InDelta(t, 104, Area(apart), 1e-9)
}

func TestFromGeometry(t *testing.T) {
	tests := []struct {
		wkt   string
		count int
		area  float64
	}{
		{"POLYGON((0 0,0 2,2 2,2 0,0 0))", 1, 4},
		{"MULTIPOLYGON(((0 0,1 0,1 1,0 1,0 0)),((5 5,7 5,7 7,5 7,5 5)))", 2, 5},
		{"GEOMETRYCOLLECTION(POLYGON((0 0,1 0,1 1,0 1,0 0)),LINESTRING(0 0,3 3),POINT(1 1))", 1, 1},
		{"LINESTRING(0 0,1 1)", 0, 0},
		{"POLYGON EMPTY", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.wkt, func(t *testing.T) {
			g, err := sf.UnmarshalWKT(tt.wkt)
			require.NoError(t, err)
			got := fromGeometry(g)
			assert.Len(t, got, tt.count)
			assert.InDelta(t, tt.area, Area(got), 1e-9)
			for _, p := range got {
				assert.Greater(t, geom.RingArea(p.Points), 0.0)
			}
		})
	}
}

func TestBooleanEmptyOperands(t *testing.T) {
	k := MustPlanar()
	a := []geom.Polygon{square(2, geom.Pt(0, 0))}

	got, err := k.Boolean(a, nil, Or)
	require.NoError(t, err)
	assert.InDelta(t, 4, Area(got), 1e-9)

	got, err = k.Boolean(nil, a, Not)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = k.Boolean(a, nil, And)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBooleanDissolvesOverlaps(t *testing.T) {
	k := MustPlanar()
	overlapping := []geom.Polygon{square(2, geom.Pt(0, 0)), square(2, geom.Pt(1, 0))}

	healed, err := Heal(k, overlapping)
	require.NoError(t, err)
	require.Len(t, healed, 1)
	assert.InDelta(t, 6, healed[0].Area(), 1e-9)

	xored, err := XorMerge(k, overlapping)
	require.NoError(t, err)
	assert.InDelta(t, 4, Area(xored), 1e-9)
}

func TestBooleanNormalizesWinding(t *testing.T) {
	k := MustPlanar()
	frame := []geom.Polygon{square(10, geom.Pt(0, 0))}
	hole := []geom.Polygon{square(2, geom.Pt(0, 0))}

	got, err := k.Boolean(frame, hole, Not)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Holes, 1)
	assert.Greater(t, geom.RingArea(got[0].Points), 0.0)
	assert.Less(t, geom.RingArea(got[0].Holes[0]), 0.0)
	assert.InDelta(t, 96, got[0].Area(), 1e-9)
}

func TestOffsetRectangle(t *testing.T) {
	k := MustPlanar()
	r := []geom.Polygon{geom.Rectangle(10, 4, geom.Pt(0, 0))}

	grown, err := k.Offset(r, 1)
	require.NoError(t, err)
	require.Len(t, grown, 1)
	b := grown[0].BBox()
	assert.InDelta(t, 12, b.Width(), 1e-9)
	assert.InDelta(t, 6, b.Height(), 1e-9)
	// mitred corners keep the rectangle square
	assert.InDelta(t, 72, grown[0].Area(), 1e-6)

	shrunk, err := k.Offset(r, -1)
	require.NoError(t, err)
	require.Len(t, shrunk, 1)
	assert.InDelta(t, 16, shrunk[0].Area(), 1e-6)
}

func TestOffsetRoundTrip(t *testing.T) {
	k := MustPlanar()
	oct := []geom.Polygon{geom.Octagon(20, 20, geom.Pt(0, 0), 0)}

	grown, err := k.Offset(oct, 2)
	require.NoError(t, err)
	back, err := k.Offset(grown, -2)
	require.NoError(t, err)

	// all octagon corners are 135 degrees, well inside the miter limit
	assert.InDelta(t, oct[0].Area(), Area(back), 1e-6)
}

func TestOffsetVanishes(t *testing.T) {
	k := MustPlanar()
	got, err := k.Offset([]geom.Polygon{square(2, geom.Pt(0, 0))}, -1.5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOffsetZeroHeals(t *testing.T) {
	k := MustPlanar()
	got, err := k.Offset([]geom.Polygon{square(2, geom.Pt(0, 0)), square(2, geom.Pt(1, 1))}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 7, got[0].Area(), 1e-9)
}

func TestOffsetDoesNotMutateInput(t *testing.T) {
	k := MustPlanar()
	in := []geom.Polygon{square(4, geom.Pt(0, 0))}
	before := in[0].Clone()

	_, err := k.Offset(in, 1)
	require.NoError(t, err)
	assert.Equal(t, before, in[0])
}

func TestFracture(t *testing.T) {
	k := MustPlanar()
	frame := geom.Rectangle(10, 10, geom.Pt(0, 0))
	frame.Holes = [][]geom.Point{square(2, geom.Pt(-2, 0)).Points, square(2, geom.Pt(2, 2)).Points}
	frame.Tag = geom.Tag{Layer: 4, Datatype: 1}

	pieces, err := Fracture(k, frame)
	require.NoError(t, err)
	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.Empty(t, p.Holes)
		assert.Equal(t, frame.Tag, p.Tag)
	}
	assert.InDelta(t, frame.Area(), Area(pieces), 1e-6)
}

func TestText(t *testing.T) {
	k := MustPlanar()

	got, err := k.Text("O8", TextStyle{Size: 10})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	holes := 0
	for _, p := range got {
		holes += len(p.Holes)
	}
	assert.GreaterOrEqual(t, holes, 3, "O has one counter and 8 has two")

	b := geom.Bounds(got...)
	assert.Greater(t, b.Width(), 5.0)
	assert.Less(t, b.Height(), 10.0)
	assert.GreaterOrEqual(t, b.Min.Y, -1.0)
}

func TestTextVertical(t *testing.T) {
	k := MustPlanar()
	h, err := k.Text("AB", TextStyle{Size: 10})
	require.NoError(t, err)
	v, err := k.Text("AB", TextStyle{Size: 10, Vertical: true})
	require.NoError(t, err)

	hb, vb := geom.Bounds(h...), geom.Bounds(v...)
	assert.Greater(t, hb.Width(), vb.Width())
	assert.Greater(t, vb.Height(), hb.Height())
}

func TestTextRejectsBadSize(t *testing.T) {
	_, err := MustPlanar().Text("A", TextStyle{})
	assert.Error(t, err)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "xor", Xor.String())
	assert.Equal(t, "op(9)", Op(9).String())
	assert.False(t, math.IsNaN(Area(nil)))
}
