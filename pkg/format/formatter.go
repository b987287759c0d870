// Package format applies per-layer formatting rules to shapes.
//
// A [LayerRule] names a target (layer, datatype) and the transforms that
// shapes for that layer go through. [Formatter.Apply] runs them in a fixed
// order:
//
//  1. flatten the input groups
//  2. isolate: replace shapes by their border band
//  3. separate resolution: split into fine and coarse parts, fine parts
//     tagged on layer+offset
//  4. invert against the bounds when the rule is not positive
//  5. tag everything with the rule's tag
//  6. append the fine parts
//
// A [LayerMap] collects the rules of one fabrication scheme under symbolic
// names and is passed explicitly to every device.
package format

import (
	"fmt"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
)

// Formatter applies layer rules using a geometry kernel.
type Formatter struct {
	Kernel kernel.Kernel
}

// NewFormatter returns a Formatter backed by k.
func NewFormatter(k kernel.Kernel) *Formatter {
	return &Formatter{Kernel: k}
}

// Apply formats the flattened groups for rule. bounds is required when the
// rule is inverted; without it Apply fails with a MISSING_BOUNDS error. The
// input shapes are not modified.
func (f *Formatter) Apply(rule LayerRule, bounds []geom.Polygon, groups ...[]geom.Polygon) ([]geom.Polygon, error) {
	if !rule.Positive() && len(bounds) == 0 {
		return nil, errors.New(errors.ErrCodeMissingBounds, "layer %s is inverted but no bounding shape was given", rule)
	}

	shapes := flatten(groups)
	var err error

	if w := rule.IsolateWidth(); w != 0 {
		if shapes, err = OffsetAndSubtract(f.Kernel, shapes, w, true, false); err != nil {
			return nil, fmt.Errorf("isolate %s: %w", rule, err)
		}
	}

	var fine []geom.Polygon
	if rule.SeparateOffset() > 0 {
		if fine, shapes, err = SeparateResolution(f.Kernel, shapes, rule.Positive(), rule.Resolution()); err != nil {
			return nil, fmt.Errorf("separate resolution %s: %w", rule, err)
		}
		fine = tagAll(fine, rule.FineTag())
	}

	if !rule.Positive() {
		if shapes, err = Invert(f.Kernel, shapes, bounds); err != nil {
			return nil, fmt.Errorf("format %s: %w", rule, err)
		}
	}

	return append(tagAll(shapes, rule.Tag()), fine...), nil
}

// Filter returns the shapes tagged exactly with rule's tag.
func (f *Formatter) Filter(rule LayerRule, shapes []geom.Polygon) []geom.Polygon {
	return Filter(rule, shapes)
}

// Filter returns the shapes tagged exactly with rule's tag.
func Filter(rule LayerRule, shapes []geom.Polygon) []geom.Polygon {
	var out []geom.Polygon
	for _, s := range shapes {
		if s.Tag == rule.Tag() {
			out = append(out, s)
		}
	}
	return out
}

func flatten(groups [][]geom.Polygon) []geom.Polygon {
	var n int
	for _, g := range groups {
		n += len(g)
	}
	out := make([]geom.Polygon, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// tagAll returns tagged copies; the inputs may alias caller geometry.
func tagAll(shapes []geom.Polygon, t geom.Tag) []geom.Polygon {
	out := make([]geom.Polygon, len(shapes))
	for i, s := range shapes {
		out[i] = s.WithTag(t)
	}
	return out
}
