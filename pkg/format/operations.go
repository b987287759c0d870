package format

import (
	"fmt"

	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
)

// Invert returns bounds minus shapes.
func Invert(k kernel.Kernel, shapes, bounds []geom.Polygon) ([]geom.Polygon, error) {
	out, err := k.Boolean(bounds, shapes, kernel.Not)
	if err != nil {
		return nil, fmt.Errorf("invert: %w", err)
	}
	return out, nil
}

// Heal merges overlapping shapes.
func Heal(k kernel.Kernel, shapes []geom.Polygon) ([]geom.Polygon, error) {
	return kernel.Heal(k, shapes)
}

// OffsetAndSubtract returns the border band between shapes and shapes
// offset by distance. Shapes that vanish under a negative distance are
// dropped silently.
func OffsetAndSubtract(k kernel.Kernel, shapes []geom.Polygon, distance float64, healBefore, healAfter bool) ([]geom.Polygon, error) {
	var err error
	if healBefore {
		if shapes, err = Heal(k, shapes); err != nil {
			return nil, err
		}
	}
	off, err := k.Offset(shapes, distance)
	if err != nil {
		return nil, err
	}

	var band []geom.Polygon
	if distance < 0 {
		band, err = k.Boolean(shapes, off, kernel.Not)
	} else {
		band, err = k.Boolean(off, shapes, kernel.Not)
	}
	if err != nil {
		return nil, fmt.Errorf("offset and subtract: %w", err)
	}
	if healAfter {
		return Heal(k, band)
	}
	return band, nil
}

// SeparateResolution splits shapes into a fine border and a coarse body.
//
// For positive polarity each shape under res.MinArea is kept entirely as
// fine. The others contribute an inner border of res.FineWidth and a body
// shrunk by FineWidth-Overlap, so the two parts overlap by Overlap. For
// negative polarity the border and body grow outward instead, matching the
// inverted geometry.
func SeparateResolution(k kernel.Kernel, shapes []geom.Polygon, positive bool, res Resolution) (fine, coarse []geom.Polygon, err error) {
	if res.XorBefore {
		if shapes, err = kernel.XorMerge(k, shapes); err != nil {
			return nil, nil, err
		}
	}

	body := shapes
	w := res.FineWidth
	if positive {
		body = nil
		for _, s := range shapes {
			if s.Area() < res.MinArea {
				fine = append(fine, s.Clone())
			} else {
				body = append(body, s)
			}
		}
		w = -w
	}

	if len(body) > 0 {
		border, err := OffsetAndSubtract(k, body, w, true, false)
		if err != nil {
			return nil, nil, err
		}
		fine = append(fine, border...)

		inner := w + res.Overlap
		if !positive {
			inner = w - res.Overlap
		}
		if coarse, err = k.Offset(body, inner); err != nil {
			return nil, nil, err
		}
	}

	if res.XorAfter {
		if fine, err = kernel.XorMerge(k, fine); err != nil {
			return nil, nil, err
		}
		if coarse, err = kernel.XorMerge(k, coarse); err != nil {
			return nil, nil, err
		}
	}
	return fine, coarse, nil
}
