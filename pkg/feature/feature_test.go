package feature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

func TestParamsAccessors(t *testing.T) {
	p := Params{2.5, 3, "mesa", [2]float64{1, 2}, []any{4, 5.5}}

	f, err := p.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	f, err = p.Float(1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	n, err := p.Int(1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = p.Int(0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	s, err := p.Text(2)
	require.NoError(t, err)
	assert.Equal(t, "mesa", s)

	pt, err := p.Pair(3)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(1, 2), pt)

	pt, err = p.Pair(4)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(4, 5.5), pt)

	_, err = p.Float(9)
	assert.Error(t, err)
	_, err = p.Text(0)
	assert.Error(t, err)
}

func TestParamsKey(t *testing.T) {
	tests := []struct {
		a, b Params
		same bool
	}{
		{Params{1.0}, Params{1.0}, true},
		{Params{1.0, "x"}, Params{1.0, "x"}, true},
		{Params{1.0}, Params{1}, false},
		{Params{1.0}, Params{2.0}, false},
		{Params{"a|b"}, Params{"a", "b"}, false},
		{Params{"x|string:y"}, Params{"x", "y"}, false},
		{Params{"a;5:b"}, Params{"a", "b"}, false},
		{Params{"a", "b|string:c"}, Params{"a|string:b", "c"}, false},
		{Params{[]any{1.0, 2.0}}, Params{[]any{1.0, 2.0}}, true},
		{Params{}, Params{""}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Key() == tt.b.Key(); got != tt.same {
			t.Errorf("Key(%v) == Key(%v) = %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
}

func TestAccessMapPoint(t *testing.T) {
	a := AccessMap{
		LabelPos: geom.Pt(0, 100),
		"pair":   []float64{1, 2},
		"meta":   map[string]float64{"area": 3},
	}
	pt, ok := a.Point(LabelPos)
	assert.True(t, ok)
	assert.Equal(t, geom.Pt(0, 100), pt)

	pt, ok = a.Point("pair")
	assert.True(t, ok)
	assert.Equal(t, geom.Pt(1, 2), pt)

	_, ok = a.Point("meta")
	assert.False(t, ok)
	_, ok = a.Point("missing")
	assert.False(t, ok)
}

func TestLabelCentred(t *testing.T) {
	k := kernel.MustPlanar()
	tag := geom.Tag{Layer: 9}

	out, err := Label(k, "042", LabelStyle{Size: 20}, geom.Pt(10, -5), tag)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	c := geom.Bounds(out...).Center()
	assert.InDelta(t, 10, c.X, 1e-9)
	assert.InDelta(t, -5, c.Y, 1e-9)
	for _, p := range out {
		assert.Equal(t, tag, p.Tag)
	}
}

func TestLabelRotation(t *testing.T) {
	k := kernel.MustPlanar()

	flat, err := Label(k, "12345", LabelStyle{Size: 10}, geom.Point{}, geom.Tag{})
	require.NoError(t, err)
	turned, err := Label(k, "12345", LabelStyle{Size: 10, Rotation: 90}, geom.Point{}, geom.Tag{})
	require.NoError(t, err)

	fb, tb := geom.Bounds(flat...), geom.Bounds(turned...)
	assert.Greater(t, fb.Width(), fb.Height())
	assert.InDelta(t, fb.Width(), tb.Height(), 1e-6)
	assert.InDelta(t, fb.Height(), tb.Width(), 1e-6)
	assert.InDelta(t, kernel.Area(flat), kernel.Area(turned), 1e-6)
}

func TestLabelEmpty(t *testing.T) {
	out, err := Label(kernel.MustPlanar(), "", LabelStyle{}, geom.Point{}, geom.Tag{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

type testDevice struct {
	*Base
}

func (d testDevice) Build(p Params) (*library.Cell, AccessMap, error) {
	size, err := p.Float(0)
	if err != nil {
		return nil, nil, err
	}
	cell, err := d.NewCell(fmt.Sprintf("Test_%g", size))
	if err != nil {
		return nil, nil, err
	}
	return cell.Build(), AccessMap{LabelPos: geom.Pt(0, 0)}, nil
}

var _ Feature = testDevice{}

func TestBaseFormat(t *testing.T) {
	k := kernel.MustPlanar()
	layers, err := format.NewLayerMap(
		format.Entry{Name: "mesa", Rule: format.MustRule(1)},
		format.Entry{Name: "via", Rule: format.MustRule(2, format.Inverted())},
	)
	require.NoError(t, err)
	base := NewBase(library.MustName("Dev"), layers, geom.Rectangle(50, 50, geom.Pt(0, 0)), k)

	assert.Equal(t, geom.Pt(50, 50), base.Size())
	assert.True(t, base.HasLayer("via"))

	inv, err := base.Format("via", []geom.Polygon{geom.Rectangle(10, 10, geom.Pt(0, 0))})
	require.NoError(t, err)
	assert.InDelta(t, 2500-100, kernel.Area(inv), 1e-6)

	_, err = base.Format("nope", nil)
	assert.True(t, errors.IsConfiguration(err))

	b := base.Bounds()
	b.Points[0] = geom.Pt(1e6, 1e6)
	assert.Equal(t, geom.Pt(50, 50), base.Size(), "Bounds must return a copy")
}

func TestBaseNewCell(t *testing.T) {
	base := NewBase(library.MustName("Dev"), format.LayerMap{}, geom.Rectangle(10, 10, geom.Pt(0, 0)), kernel.MustPlanar())

	cb, err := base.NewCell("Dev_1.5")
	require.NoError(t, err)
	cell := cb.Build()
	assert.Equal(t, "Dev_1p5", cell.Name().String())
	require.Equal(t, 1, cell.NumReferences())
	assert.Same(t, base.Template(), cell.References()[0].Cell)

	_, err = base.NewCell("bad name")
	assert.True(t, errors.Is(err, errors.ErrCodeNaming))
}
