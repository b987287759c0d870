// Package devices provides reference features and a registry that maps
// device names used in layout files to their constructors.
package devices

import (
	"sort"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/feature"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
)

type options struct {
	bounds *geom.Polygon
	dim    *geom.Point
	layer  string
}

// Option customizes a device.
type Option func(*options)

// WithBounds overrides the device footprint.
func WithBounds(b geom.Polygon) Option {
	return func(o *options) {
		c := b.Clone()
		o.bounds = &c
	}
}

// WithDimensions sets the measurement area of devices that have one.
func WithDimensions(x, y float64) Option {
	return func(o *options) {
		d := geom.Pt(x, y)
		o.dim = &d
	}
}

// WithLayerName selects the layer-map entry used by single-layer devices.
func WithLayerName(name string) Option {
	return func(o *options) { o.layer = name }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) boundsOr(def geom.Polygon) geom.Polygon {
	if o.bounds != nil {
		return *o.bounds
	}
	return def
}

// Constructor creates a feature for a layer map.
type Constructor func(layers format.LayerMap, k kernel.Kernel, opts ...Option) (feature.Feature, error)

var registry = map[string]Constructor{
	"FerroTest": func(l format.LayerMap, k kernel.Kernel, opts ...Option) (feature.Feature, error) {
		return NewFerroTest(l, k, opts...)
	},
	"ProfilometerTest": func(l format.LayerMap, k kernel.Kernel, opts ...Option) (feature.Feature, error) {
		return NewProfilometerTest(l, k, opts...)
	},
	"MetalLine": func(l format.LayerMap, k kernel.Kernel, opts ...Option) (feature.Feature, error) {
		return NewMetalLine(l, k, opts...)
	},
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, error) {
	c, ok := registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown device %q (known: %v)", name, Names())
	}
	return c, nil
}

// Names returns the registered device names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func requireLayers(layers format.LayerMap, device string, names ...string) error {
	for _, n := range names {
		if !layers.Has(n) {
			return errors.New(errors.ErrCodeConfiguration, "%s requires layer %q", device, n)
		}
	}
	return nil
}
