package kernel

import (
	"errors"
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/masktower/pkg/geom"
)

const (
	// curveSteps is the number of line segments per quadratic or cubic
	// outline segment.
	curveSteps = 8

	// lineSpacing is the baseline advance in em units for new lines and
	// vertical text.
	lineSpacing = 1.25
)

// Text implements [Kernel]. Glyph contours are combined with even-odd
// filling so counters (the holes in "o" or "8") are cut out.
func (p *Planar) Text(s string, style TextStyle) ([]geom.Polygon, error) {
	if style.Size <= 0 {
		return nil, fmt.Errorf("text size must be positive, got %v", style.Size)
	}

	var buf sfnt.Buffer
	upem := int(p.font.UnitsPerEm())
	ppem := fixed.I(upem)
	scale := style.Size / float64(upem)
	advanceLine := style.Size * lineSpacing

	var out []geom.Polygon
	var x, y float64
	for _, r := range s {
		if r == '\n' {
			x, y = 0, y-advanceLine
			continue
		}

		gi, err := p.font.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("glyph index %q: %w", r, err)
		}

		segs, err := p.font.LoadGlyph(&buf, gi, ppem, nil)
		if err != nil && !errors.Is(err, sfnt.ErrNotFound) {
			return nil, fmt.Errorf("load glyph %q: %w", r, err)
		}
		contours := flattenSegments(segs, x, y, scale)

		adv, err := p.font.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("glyph advance %q: %w", r, err)
		}

		if len(contours) > 0 {
			glyph, err := XorMerge(p, contours)
			if err != nil {
				return nil, fmt.Errorf("glyph %q: %w", r, err)
			}
			out = append(out, glyph...)
		}

		if style.Vertical {
			y -= advanceLine
		} else {
			x += fixedToFloat(adv) * scale
		}
	}
	return out, nil
}

// flattenSegments converts y-down glyph outline segments into y-up polygons
// positioned at the pen position (x, y).
func flattenSegments(segs sfnt.Segments, x, y, scale float64) []geom.Polygon {
	at := func(q fixed.Point26_6) geom.Point {
		return geom.Pt(x+fixedToFloat(q.X)*scale, y-fixedToFloat(q.Y)*scale)
	}

	var contours []geom.Polygon
	var ring []geom.Point
	flush := func() {
		if p := geom.NewPolygon(ring...); !p.Degenerate() {
			contours = append(contours, p)
		}
		ring = nil
	}

	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			ring = append(ring, at(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			ring = append(ring, at(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			if len(ring) == 0 {
				continue
			}
			p0, c, p1 := ring[len(ring)-1], at(seg.Args[0]), at(seg.Args[1])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				mt := 1 - t
				ring = append(ring, geom.Pt(
					mt*mt*p0.X+2*mt*t*c.X+t*t*p1.X,
					mt*mt*p0.Y+2*mt*t*c.Y+t*t*p1.Y,
				))
			}
		case sfnt.SegmentOpCubeTo:
			if len(ring) == 0 {
				continue
			}
			p0, c1, c2, p1 := ring[len(ring)-1], at(seg.Args[0]), at(seg.Args[1]), at(seg.Args[2])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				mt := 1 - t
				a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
				ring = append(ring, geom.Pt(
					a*p0.X+b*c1.X+c*c2.X+d*p1.X,
					a*p0.Y+b*c1.Y+c*c2.Y+d*p1.Y,
				))
			}
		}
	}
	flush()

	for i := range contours {
		contours[i].Points = dropDuplicates(contours[i].Points)
	}
	return contours
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
