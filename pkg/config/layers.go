package config

import (
	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/format"
)

// LayerSpec is one [layers.<name>] section. Unset resolution fields take
// the format package defaults.
type LayerSpec struct {
	Layer              int      `toml:"layer" yaml:"layer"`
	Datatype           int      `toml:"datatype" yaml:"datatype"`
	Polarity           string   `toml:"polarity" yaml:"polarity"`
	Isolate            float64  `toml:"isolate" yaml:"isolate"`
	SeparateResolution int      `toml:"separate_resolution" yaml:"separate_resolution"`
	FineWidth          *float64 `toml:"fine_width" yaml:"fine_width"`
	Overlap            *float64 `toml:"overlap" yaml:"overlap"`
	MinArea            *float64 `toml:"min_area" yaml:"min_area"`
	XorBefore          bool     `toml:"xor_before" yaml:"xor_before"`
	XorAfter           bool     `toml:"xor_after" yaml:"xor_after"`
}

// Rule converts the section into a validated layer rule.
func (s LayerSpec) Rule() (format.LayerRule, error) {
	var positive bool
	switch s.Polarity {
	case "", "positive", "+":
		positive = true
	case "negative", "-":
	default:
		return format.LayerRule{}, errors.New(errors.ErrCodeConfiguration, "polarity must be positive or negative, got %q", s.Polarity)
	}

	res := format.DefaultResolution()
	if s.FineWidth != nil {
		res.FineWidth = *s.FineWidth
	}
	if s.Overlap != nil {
		res.Overlap = *s.Overlap
	}
	if s.MinArea != nil {
		res.MinArea = *s.MinArea
	}
	res.XorBefore = s.XorBefore
	res.XorAfter = s.XorAfter

	return format.NewRule(s.Layer,
		format.Datatype(s.Datatype),
		format.Polarity(positive),
		format.Isolate(s.Isolate),
		format.FineLayerOffset(s.SeparateResolution),
		format.WithResolution(res),
	)
}

// LayerMap builds the layer map in file order.
func (l *Layout) LayerMap() (format.LayerMap, error) {
	names := l.LayerNames()
	entries := make([]format.Entry, 0, len(names))
	for _, name := range names {
		rule, err := l.Layers[name].Rule()
		if err != nil {
			return format.LayerMap{}, errors.Wrap(errors.ErrCodeConfiguration, err, "layer %q", name)
		}
		entries = append(entries, format.Entry{Name: name, Rule: rule})
	}
	return format.NewLayerMap(entries...)
}
