package kernel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	sf "github.com/peterstace/simplefeatures/geom"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/sfnt"

	"github.com/matzehuels/masktower/pkg/geom"
)

// DefaultMiterLimit is the ratio of miter length to offset distance beyond
// which a corner is bevelled.
const DefaultMiterLimit = 2.0

// Planar implements [Kernel] on top of the simplefeatures overlay engine.
// Offsets are built from per-edge bands and per-vertex joins, then merged
// with (or cut from) the input.
type Planar struct {
	logger     *log.Logger
	font       *sfnt.Font
	miterLimit float64
}

// Option configures a [Planar] kernel.
type Option func(*Planar)

// WithLogger sets the logger used for geometry diagnostics.
func WithLogger(l *log.Logger) Option { return func(p *Planar) { p.logger = l } }

// WithMiterLimit sets the miter limit used by Offset.
func WithMiterLimit(limit float64) Option { return func(p *Planar) { p.miterLimit = limit } }

// WithFont replaces the built-in Go Mono font used by Text.
func WithFont(f *sfnt.Font) Option { return func(p *Planar) { p.font = f } }

// NewPlanar creates a Planar kernel.
func NewPlanar(opts ...Option) (*Planar, error) {
	p := &Planar{miterLimit: DefaultMiterLimit}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if p.font == nil {
		f, err := sfnt.Parse(gomono.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse built-in font: %w", err)
		}
		p.font = f
	}
	if p.miterLimit < 1 {
		p.miterLimit = 1
	}
	return p, nil
}

// MustPlanar is like NewPlanar but panics on error.
func MustPlanar(opts ...Option) *Planar {
	p, err := NewPlanar(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Logger returns the diagnostics logger.
func (p *Planar) Logger() *log.Logger { return p.logger }

// Boolean implements [Kernel].
func (p *Planar) Boolean(a, b []geom.Polygon, op Op) ([]geom.Polygon, error) {
	ga, okA, err := dissolve(a)
	if err != nil {
		return nil, fmt.Errorf("%s: first operand: %w", op, err)
	}
	gb, okB, err := dissolve(b)
	if err != nil {
		return nil, fmt.Errorf("%s: second operand: %w", op, err)
	}

	var g sf.Geometry
	switch op {
	case And:
		if !okA || !okB {
			return nil, nil
		}
		g, err = sf.Intersection(ga, gb)
	case Or, Xor:
		switch {
		case !okA && !okB:
			return nil, nil
		case !okA:
			return fromGeometry(gb), nil
		case !okB:
			return fromGeometry(ga), nil
		}
		if op == Or {
			g, err = sf.Union(ga, gb)
		} else {
			g, err = sf.SymmetricDifference(ga, gb)
		}
	case Not:
		if !okA {
			return nil, nil
		}
		if !okB {
			return fromGeometry(ga), nil
		}
		g, err = sf.Difference(ga, gb)
	default:
		return nil, fmt.Errorf("unknown boolean operation %s", op)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return fromGeometry(g), nil
}

// Offset implements [Kernel].
func (p *Planar) Offset(shapes []geom.Polygon, distance float64) ([]geom.Polygon, error) {
	base, ok, err := dissolve(shapes)
	if err != nil {
		return nil, fmt.Errorf("offset: %w", err)
	}
	if !ok {
		return nil, nil
	}
	if distance == 0 {
		return fromGeometry(base), nil
	}

	regions := fromGeometry(base)
	pieces := bandPieces(regions, math.Abs(distance), p.miterLimit)
	band, ok, err := dissolve(pieces)
	if err != nil {
		return nil, fmt.Errorf("offset band: %w", err)
	}
	if !ok {
		return regions, nil
	}

	var g sf.Geometry
	if distance > 0 {
		g, err = sf.Union(base, band)
	} else {
		g, err = sf.Difference(base, band)
	}
	if err != nil {
		return nil, fmt.Errorf("offset: %w", err)
	}

	out := fromGeometry(g)
	if distance < 0 && len(out) < len(regions) {
		p.logger.Debug("shapes vanished after offset",
			"distance", distance,
			"before", len(regions),
			"after", len(out))
	}
	return out, nil
}

// dissolve unions shapes into a single geometry. The boolean reports whether
// the result is non-empty.
func dissolve(shapes []geom.Polygon) (sf.Geometry, bool, error) {
	parts := make([]sf.Geometry, 0, len(shapes))
	for _, s := range shapes {
		g, ok, err := toGeometry(s)
		if err != nil {
			return sf.Geometry{}, false, err
		}
		if ok {
			parts = append(parts, g)
		}
	}
	if len(parts) == 0 {
		return sf.Geometry{}, false, nil
	}
	g, err := unionAll(parts)
	if err != nil {
		return sf.Geometry{}, false, err
	}
	return g, !g.IsEmpty(), nil
}

// unionAll merges parts pairwise so that each overlay works on operands of
// similar size.
func unionAll(parts []sf.Geometry) (sf.Geometry, error) {
	for len(parts) > 1 {
		next := make([]sf.Geometry, 0, (len(parts)+1)/2)
		for i := 0; i < len(parts); i += 2 {
			if i+1 == len(parts) {
				next = append(next, parts[i])
				continue
			}
			u, err := sf.Union(parts[i], parts[i+1])
			if err != nil {
				return sf.Geometry{}, err
			}
			next = append(next, u)
		}
		parts = next
	}
	return parts[0], nil
}

// toGeometry converts p to a simplefeatures polygon. Degenerate polygons and
// holes are skipped rather than rejected.
func toGeometry(p geom.Polygon) (sf.Geometry, bool, error) {
	if p.Degenerate() {
		return sf.Geometry{}, false, nil
	}
	var b strings.Builder
	b.WriteString("POLYGON(")
	writeRing(&b, p.Points)
	for _, h := range p.Holes {
		if len(h) < 3 || math.Abs(geom.RingArea(h)) < 1e-12 {
			continue
		}
		b.WriteByte(',')
		writeRing(&b, h)
	}
	b.WriteByte(')')

	g, err := sf.UnmarshalWKT(b.String())
	if err != nil {
		return sf.Geometry{}, false, fmt.Errorf("invalid polygon: %w", err)
	}
	return g, true, nil
}

func writeRing(b *strings.Builder, ring []geom.Point) {
	b.WriteByte('(')
	for i, q := range ring {
		if i > 0 {
			b.WriteByte(',')
		}
		writeXY(b, q)
	}
	b.WriteByte(',')
	writeXY(b, ring[0])
	b.WriteByte(')')
}

func writeXY(b *strings.Builder, q geom.Point) {
	b.WriteString(strconv.FormatFloat(q.X, 'g', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(q.Y, 'g', -1, 64))
}

// fromGeometry extracts the polygonal parts of g with normalized winding.
func fromGeometry(g sf.Geometry) []geom.Polygon {
	var out []geom.Polygon
	if poly, ok := g.AsPolygon(); ok {
		return appendPolygon(out, poly)
	}
	if mp, ok := g.AsMultiPolygon(); ok {
		for i := 0; i < mp.NumPolygons(); i++ {
			out = appendPolygon(out, mp.PolygonN(i))
		}
		return out
	}
	if gc, ok := g.AsGeometryCollection(); ok {
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, fromGeometry(gc.GeometryN(i))...)
		}
	}
	return out
}

func appendPolygon(out []geom.Polygon, poly sf.Polygon) []geom.Polygon {
	if poly.IsEmpty() {
		return out
	}
	outer := ringPoints(poly.ExteriorRing())
	if len(outer) < 3 || math.Abs(geom.RingArea(outer)) < 1e-12 {
		return out
	}
	if geom.RingArea(outer) < 0 {
		outer = geom.Reversed(outer)
	}
	p := geom.Polygon{Points: outer}
	for i := 0; i < poly.NumInteriorRings(); i++ {
		h := ringPoints(poly.InteriorRingN(i))
		if len(h) < 3 || math.Abs(geom.RingArea(h)) < 1e-12 {
			continue
		}
		if geom.RingArea(h) > 0 {
			h = geom.Reversed(h)
		}
		p.Holes = append(p.Holes, h)
	}
	return append(out, p)
}

func ringPoints(ls sf.LineString) []geom.Point {
	seq := ls.Coordinates()
	n := seq.Length()
	pts := make([]geom.Point, 0, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		pts = append(pts, geom.Pt(xy.X, xy.Y))
	}
	if n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

var _ Kernel = (*Planar)(nil)
