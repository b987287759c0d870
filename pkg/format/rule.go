package format

import (
	"fmt"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/geom"
)

// Resolution parameters for splitting shapes into a fine border and a
// coarse body.
type Resolution struct {
	FineWidth float64 `json:"fine_width" toml:"fine_width" yaml:"fine_width"`
	Overlap   float64 `json:"overlap" toml:"overlap" yaml:"overlap"`
	MinArea   float64 `json:"min_area" toml:"min_area" yaml:"min_area"`
	XorBefore bool    `json:"xor_before,omitempty" toml:"xor_before" yaml:"xor_before"`
	XorAfter  bool    `json:"xor_after,omitempty" toml:"xor_after" yaml:"xor_after"`
}

// DefaultResolution returns a 100 nm border with 30 nm overlap; shapes under
// 0.1 µm² stay entirely fine.
func DefaultResolution() Resolution {
	return Resolution{FineWidth: 0.1, Overlap: 0.03, MinArea: 0.1}
}

func (r Resolution) validate() error {
	if r.FineWidth <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "fine width must be positive, got %g", r.FineWidth)
	}
	if r.Overlap < 0 || r.Overlap >= r.FineWidth {
		return errors.New(errors.ErrCodeConfiguration, "overlap %g must be in [0, fine width %g)", r.Overlap, r.FineWidth)
	}
	if r.MinArea < 0 {
		return errors.New(errors.ErrCodeConfiguration, "min area must be non-negative, got %g", r.MinArea)
	}
	return nil
}

// LayerRule describes how shapes destined for one fabrication layer are
// formatted. It is an immutable value: derive variants with
// [LayerRule.New].
type LayerRule struct {
	tag        geom.Tag
	inverted   bool
	isolate    float64
	separate   int
	resolution Resolution
}

// RuleOption sets one field of a LayerRule.
type RuleOption func(*LayerRule)

// Layer sets the layer number.
func Layer(n int) RuleOption { return func(r *LayerRule) { r.tag.Layer = n } }

// Datatype sets the datatype number.
func Datatype(n int) RuleOption { return func(r *LayerRule) { r.tag.Datatype = n } }

// Polarity sets whether shapes are kept as drawn (true) or inverted against
// the feature bounds (false).
func Polarity(positive bool) RuleOption { return func(r *LayerRule) { r.inverted = !positive } }

// Inverted is Polarity(false).
func Inverted() RuleOption { return Polarity(false) }

// Isolate replaces shapes with a border band of the given width: outside
// the shape for positive widths, inside it for negative ones. Zero disables
// it.
func Isolate(width float64) RuleOption { return func(r *LayerRule) { r.isolate = width } }

// FineLayerOffset enables resolution separation; fine parts go
// to layer+offset. Zero disables it.
func FineLayerOffset(offset int) RuleOption { return func(r *LayerRule) { r.separate = offset } }

// WithResolution sets the resolution separation parameters.
func WithResolution(res Resolution) RuleOption { return func(r *LayerRule) { r.resolution = res } }

// NewRule returns a positive rule on (layer, 0) modified by opts.
func NewRule(layer int, opts ...RuleOption) (LayerRule, error) {
	base := LayerRule{tag: geom.Tag{Layer: layer}, resolution: DefaultResolution()}
	return base.New(opts...)
}

// MustRule is like NewRule but panics on invalid input.
func MustRule(layer int, opts ...RuleOption) LayerRule {
	r, err := NewRule(layer, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// New returns a copy of r with opts applied. r itself is never modified.
func (r LayerRule) New(opts ...RuleOption) (LayerRule, error) {
	out := r
	for _, opt := range opts {
		opt(&out)
	}
	if err := out.validate(); err != nil {
		return LayerRule{}, err
	}
	return out, nil
}

func (r LayerRule) validate() error {
	if err := errors.ValidateTag(r.tag.Layer, r.tag.Datatype); err != nil {
		return err
	}
	if r.separate < 0 {
		return errors.New(errors.ErrCodeConfiguration, "resolution layer offset must be non-negative, got %d", r.separate)
	}
	if r.separate > 0 {
		if err := errors.ValidateTag(r.tag.Layer+r.separate, r.tag.Datatype); err != nil {
			return fmt.Errorf("fine layer: %w", err)
		}
		return r.resolution.validate()
	}
	return nil
}

// Tag returns the (layer, datatype) pair shapes are tagged with.
func (r LayerRule) Tag() geom.Tag { return r.tag }

// Layer returns the layer number.
func (r LayerRule) Layer() int { return r.tag.Layer }

// Datatype returns the datatype number.
func (r LayerRule) Datatype() int { return r.tag.Datatype }

// Positive reports whether shapes are kept as drawn.
func (r LayerRule) Positive() bool { return !r.inverted }

// IsolateWidth returns the border band width; negative bands lie inside.
func (r LayerRule) IsolateWidth() float64 { return r.isolate }

// SeparateOffset returns the fine layer offset, zero when disabled.
func (r LayerRule) SeparateOffset() int { return r.separate }

// Resolution returns the resolution separation parameters.
func (r LayerRule) Resolution() Resolution { return r.resolution }

// FineTag returns the tag of fine shapes produced by resolution separation.
func (r LayerRule) FineTag() geom.Tag {
	return geom.Tag{Layer: r.tag.Layer + r.separate, Datatype: r.tag.Datatype}
}

func (r LayerRule) String() string {
	s := fmt.Sprintf("%d/%d", r.tag.Layer, r.tag.Datatype)
	if r.inverted {
		s += " inverted"
	}
	if r.isolate != 0 {
		s += fmt.Sprintf(" isolate=%g", r.isolate)
	}
	if r.separate > 0 {
		s += fmt.Sprintf(" fine=+%d", r.separate)
	}
	return s
}
