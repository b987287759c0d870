// Package feature defines the device generator contract.
//
// A [Feature] is a stateless template: Build turns positional parameters
// into a finished cell plus an [AccessMap] of named points (at least
// [LabelPos] when the array builder should place labels). Building twice
// with the same parameters yields identical geometry.
//
// Devices usually embed [Base], which carries the identity name, the layer
// map, the footprint and a formatter bound to a geometry kernel.
package feature

import (
	"fmt"
	"strings"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

// LabelPos is the access point where the array builder centres labels.
const LabelPos = "label_pos"

// Feature generates device cells.
type Feature interface {
	// Name is the identity of the feature template, not of built cells.
	Name() library.Name
	// Bounds is the nominal footprint used for inversion and spacing.
	Bounds() geom.Polygon
	// Build returns the cell for params and its access points.
	Build(params Params) (*library.Cell, AccessMap, error)
}

// Params are the positional build parameters of one instance.
type Params []any

// Len returns the number of parameters.
func (p Params) Len() int { return len(p) }

// Float returns parameter i as a float64. Integer values are converted.
func (p Params) Float(i int) (float64, error) {
	v, err := p.at(i)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "parameter %d: want number, got %T", i, v)
	}
}

// Int returns parameter i as an int. Floats with a fractional part are
// rejected.
func (p Params) Int(i int) (int, error) {
	v, err := p.at(i)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, errors.New(errors.ErrCodeInvalidInput, "parameter %d: %g is not an integer", i, x)
		}
		return int(x), nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "parameter %d: want integer, got %T", i, v)
	}
}

// Text returns parameter i as a string.
func (p Params) Text(i int) (string, error) {
	v, err := p.at(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "parameter %d: want string, got %T", i, v)
	}
	return s, nil
}

// Pair returns parameter i as a pair of numbers. It accepts a geom.Point,
// a [2]float64 or a two-element slice of numbers.
func (p Params) Pair(i int) (geom.Point, error) {
	v, err := p.at(i)
	if err != nil {
		return geom.Point{}, err
	}
	switch x := v.(type) {
	case geom.Point:
		return x, nil
	case [2]float64:
		return geom.Pt(x[0], x[1]), nil
	case []float64:
		if len(x) == 2 {
			return geom.Pt(x[0], x[1]), nil
		}
	case []any:
		if len(x) == 2 {
			a, errA := Params(x).Float(0)
			b, errB := Params(x).Float(1)
			if errA == nil && errB == nil {
				return geom.Pt(a, b), nil
			}
		}
	}
	return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "parameter %d: want pair of numbers, got %v", i, v)
}

// Key returns a canonical string identifying the parameter tuple. Tuples
// with equal keys build identical cells. Each value is written in Go syntax
// behind its length, so no value can spell out a separator.
func (p Params) Key() string {
	var b strings.Builder
	for _, v := range p {
		part := fmt.Sprintf("%T:%#v", v, v)
		fmt.Fprintf(&b, "%d:%s;", len(part), part)
	}
	return b.String()
}

func (p Params) at(i int) (any, error) {
	if i < 0 || i >= len(p) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing parameter %d (got %d)", i, len(p))
	}
	return p[i], nil
}

// AccessMap holds named access points and metadata of a built cell.
type AccessMap map[string]any

// Point returns the point stored under key.
func (a AccessMap) Point(key string) (geom.Point, bool) {
	v, ok := a[key]
	if !ok {
		return geom.Point{}, false
	}
	pt, err := Params{v}.Pair(0)
	if err != nil {
		return geom.Point{}, false
	}
	return pt, true
}

// Base carries what every device shares. Embed it and implement Build.
type Base struct {
	name     library.Name
	layers   format.LayerMap
	bounds   geom.Polygon
	template *library.Cell
	format   *format.Formatter
}

// NewBase creates a base. The template cell is named after the feature and
// holds any shared polygons; every cell created with NewCell references it.
func NewBase(name library.Name, layers format.LayerMap, bounds geom.Polygon, k kernel.Kernel, shared ...geom.Polygon) *Base {
	return &Base{
		name:     name,
		layers:   layers,
		bounds:   bounds.Clone(),
		template: library.NewCellBuilder(name).AddPolygons(shared...).Build(),
		format:   format.NewFormatter(k),
	}
}

func (b *Base) Name() library.Name { return b.name }
func (b *Base) Layers() format.LayerMap { return b.layers }
func (b *Base) Template() *library.Cell { return b.template }
func (b *Base) Formatter() *format.Formatter { return b.format }
func (b *Base) Kernel() kernel.Kernel { return b.format.Kernel }

// Bounds returns a copy of the footprint.
func (b *Base) Bounds() geom.Polygon { return b.bounds.Clone() }

// Size returns the footprint's bounding box size.
func (b *Base) Size() geom.Point { return b.bounds.BBox().Size() }

// HasLayer reports whether the layer map defines name.
func (b *Base) HasLayer(name string) bool { return b.layers.Has(name) }

// Format applies the named layer's rule to the shape groups, using the
// footprint as bounding shape.
func (b *Base) Format(layer string, groups ...[]geom.Polygon) ([]geom.Polygon, error) {
	rule, err := b.layers.Rule(layer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	return b.FormatRule(rule, groups...)
}

// FormatRule is Format with an explicit rule.
func (b *Base) FormatRule(rule format.LayerRule, groups ...[]geom.Polygon) ([]geom.Polygon, error) {
	out, err := b.format.Apply(rule, []geom.Polygon{b.bounds}, groups...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	return out, nil
}

// NewCell validates name and starts a cell that references the template.
func (b *Base) NewCell(name string) (*library.CellBuilder, error) {
	n, err := library.NewName(name)
	if err != nil {
		return nil, err
	}
	return library.NewCellBuilder(n).AddReference(b.template, geom.Point{}), nil
}
