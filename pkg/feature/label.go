package feature

import (
	"math"

	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
)

// LabelRatio converts a label size (cap height) into the font em size.
const LabelRatio = 16.0 / 11.0

// DefaultLabelSize is the cap height used when a style leaves Size at zero.
const DefaultLabelSize = 30.0

// LabelStyle controls label text. Size is roughly the cap height in
// micrometres, Rotation is in degrees.
type LabelStyle struct {
	Size     float64 `json:"size" toml:"size" yaml:"size"`
	Vertical bool    `json:"vertical,omitempty" toml:"vertical" yaml:"vertical"`
	Rotation float64 `json:"rotation,omitempty" toml:"rotation" yaml:"rotation"`
}

// Label renders text, rotates it, and centres its bounding box on origin.
// The polygons carry tag.
func Label(k kernel.Kernel, text string, style LabelStyle, origin geom.Point, tag geom.Tag) ([]geom.Polygon, error) {
	size := style.Size
	if size == 0 {
		size = DefaultLabelSize
	}
	glyphs, err := k.Text(text, kernel.TextStyle{Size: size * LabelRatio, Vertical: style.Vertical})
	if err != nil {
		return nil, err
	}
	if len(glyphs) == 0 {
		return nil, nil
	}

	rot := geom.Rotation(style.Rotation*math.Pi/180, geom.Point{})
	for i, g := range glyphs {
		glyphs[i] = g.Transform(rot)
	}
	c := geom.Bounds(glyphs...).Center()
	shift := geom.Pt(origin.X-c.X, origin.Y-c.Y)
	for i, g := range glyphs {
		glyphs[i] = g.Translate(shift).WithTag(tag)
	}
	return glyphs, nil
}
