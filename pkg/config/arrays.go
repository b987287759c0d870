package config

import (
	"fmt"

	"github.com/matzehuels/masktower/pkg/array"
	"github.com/matzehuels/masktower/pkg/devices"
	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/feature"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
)

// Vec is a 2-element coordinate written as [x, y].
type Vec [2]float64

func (v Vec) Point() geom.Point { return geom.Pt(v[0], v[1]) }

// ArraySpec is one [[arrays]] entry.
type ArraySpec struct {
	Device string `toml:"device" yaml:"device"`
	Name   string `toml:"name" yaml:"name"`
	Origin Vec    `toml:"origin" yaml:"origin"`

	// Values is shorthand for a single parameter sequence. Parameters
	// holds several sequences swept as a Cartesian product.
	Values     []any   `toml:"values" yaml:"values"`
	Parameters [][]any `toml:"parameters" yaml:"parameters"`
	// ValuesFrom = "layers" sweeps the layer names in file order.
	ValuesFrom string `toml:"values_from" yaml:"values_from"`

	RepeatParallel      int  `toml:"repeat_parallel" yaml:"repeat_parallel"`
	RepeatPerpendicular int  `toml:"repeat_perpendicular" yaml:"repeat_perpendicular"`
	Axis                int  `toml:"axis" yaml:"axis"`
	Count0              *int `toml:"count_0" yaml:"count_0"`
	Margin              Vec  `toml:"margin" yaml:"margin"`

	LabelSchema string             `toml:"label_schema" yaml:"label_schema"`
	LabelLayer  string             `toml:"label_layer" yaml:"label_layer"`
	LabelStyle  feature.LabelStyle `toml:"label_style" yaml:"label_style"`

	// Exclusions are polygons in top-cell coordinates.
	Exclusions [][]Vec `toml:"exclusions" yaml:"exclusions"`

	// Device options.
	Bounds     []Vec  `toml:"bounds" yaml:"bounds"`
	Dimensions *Vec   `toml:"dimensions" yaml:"dimensions"`
	LayerName  string `toml:"layer_name" yaml:"layer_name"`
}

func (a ArraySpec) validate(l *Layout) error {
	if _, err := devices.Lookup(a.Device); err != nil {
		return err
	}
	sources := 0
	for _, set := range []bool{len(a.Values) > 0, len(a.Parameters) > 0, a.ValuesFrom != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return errors.New(errors.ErrCodeConfiguration, "set only one of values, parameters and values_from")
	}
	if a.ValuesFrom != "" && a.ValuesFrom != "layers" {
		return errors.New(errors.ErrCodeConfiguration, "values_from must be \"layers\", got %q", a.ValuesFrom)
	}
	if a.Axis != 0 && a.Axis != 1 {
		return errors.New(errors.ErrCodeConfiguration, "axis must be 0 or 1, got %d", a.Axis)
	}
	if a.RepeatParallel < 0 || a.RepeatPerpendicular < 0 {
		return errors.New(errors.ErrCodeConfiguration, "repeat counts must be non-negative")
	}
	if a.Count0 != nil && *a.Count0 < 0 {
		return errors.New(errors.ErrCodeConfiguration, "count_0 must be non-negative, got %d", *a.Count0)
	}
	if a.LabelSchema != "" {
		if a.LabelLayer == "" {
			return errors.New(errors.ErrCodeConfiguration, "label_schema requires label_layer")
		}
		if _, err := array.ParseSchema(a.LabelSchema); err != nil {
			return err
		}
	}
	if a.LabelLayer != "" {
		if _, ok := l.Layers[a.LabelLayer]; !ok {
			return errors.New(errors.ErrCodeConfiguration, "label_layer %q is not declared", a.LabelLayer)
		}
	}
	if a.LayerName != "" {
		if _, ok := l.Layers[a.LayerName]; !ok {
			return errors.New(errors.ErrCodeConfiguration, "layer_name %q is not declared", a.LayerName)
		}
	}
	if a.Bounds != nil && len(a.Bounds) < 3 {
		return errors.New(errors.ErrCodeConfiguration, "bounds needs at least 3 points, got %d", len(a.Bounds))
	}
	for i, ex := range a.Exclusions {
		if len(ex) < 3 {
			return errors.New(errors.ErrCodeConfiguration, "exclusions[%d] needs at least 3 points, got %d", i, len(ex))
		}
	}
	return nil
}

// DeviceOptions returns the device constructor options of the entry.
func (a ArraySpec) DeviceOptions() []devices.Option {
	var opts []devices.Option
	if len(a.Bounds) > 0 {
		opts = append(opts, devices.WithBounds(polygon(a.Bounds)))
	}
	if a.Dimensions != nil {
		opts = append(opts, devices.WithDimensions(a.Dimensions[0], a.Dimensions[1]))
	}
	if a.LayerName != "" {
		opts = append(opts, devices.WithLayerName(a.LayerName))
	}
	return opts
}

// Options converts the entry into array options. count0 is used when the
// entry does not set count_0.
func (a ArraySpec) Options(layers format.LayerMap, count0 int) (array.Options, error) {
	opts := array.Options{
		Name:                a.Name,
		Parameters:          a.Parameters,
		RepeatParallel:      a.RepeatParallel,
		RepeatPerpendicular: a.RepeatPerpendicular,
		Axis:                a.Axis,
		LabelSchema:         a.LabelSchema,
		LabelStyle:          a.LabelStyle,
		Count0:              count0,
		Margin:              a.Margin.Point(),
	}
	if len(a.Values) > 0 {
		opts.Parameters = array.Sweep(a.Values...)
	}
	if a.ValuesFrom == "layers" {
		names := layers.Names()
		values := make([]any, len(names))
		for i, n := range names {
			values[i] = n
		}
		opts.Parameters = array.Sweep(values...)
	}
	if a.Count0 != nil {
		opts.Count0 = *a.Count0
	}
	if a.LabelLayer != "" {
		rule, err := layers.Rule(a.LabelLayer)
		if err != nil {
			return array.Options{}, fmt.Errorf("label layer: %w", err)
		}
		opts.LabelTag = rule.Tag()
	}
	shift := geom.Pt(-a.Origin[0], -a.Origin[1])
	for _, ex := range a.Exclusions {
		opts.Exclusions = append(opts.Exclusions, polygon(ex).Translate(shift))
	}
	return opts, nil
}

func polygon(pts []Vec) geom.Polygon {
	ps := make([]geom.Point, len(pts))
	for i, v := range pts {
		ps[i] = v.Point()
	}
	return geom.NewPolygon(ps...)
}
