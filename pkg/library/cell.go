package library

import (
	"github.com/matzehuels/masktower/pkg/geom"
)

// Reference places a shared cell at an offset. The referenced cell is not
// owned by the reference.
type Reference struct {
	Cell   *Cell
	Origin geom.Point
}

// Cell is a named, immutable group of polygons and references. Build cells
// with a CellBuilder.
type Cell struct {
	name     Name
	polygons []geom.Polygon
	refs     []Reference
}

// Name returns the cell name.
func (c *Cell) Name() Name { return c.name }

// Polygons returns a copy of the cell's own polygons.
func (c *Cell) Polygons() []geom.Polygon {
	out := make([]geom.Polygon, len(c.polygons))
	for i, p := range c.polygons {
		out[i] = p.Clone()
	}
	return out
}

// References returns a copy of the cell's references in insertion order.
func (c *Cell) References() []Reference {
	return append([]Reference(nil), c.refs...)
}

// NumPolygons returns the number of polygons owned directly by the cell.
func (c *Cell) NumPolygons() int { return len(c.polygons) }

// NumReferences returns the number of references in the cell.
func (c *Cell) NumReferences() int { return len(c.refs) }

// BBox returns the bounding box of the cell including all referenced cells.
// It is empty for a cell with no geometry.
func (c *Cell) BBox() geom.Box {
	b := geom.Bounds(c.polygons...)
	for _, r := range c.refs {
		b = b.Union(r.Cell.BBox().Translate(r.Origin))
	}
	return b
}

// Flatten returns every polygon of the cell hierarchy translated into this
// cell's coordinates.
func (c *Cell) Flatten() []geom.Polygon {
	var out []geom.Polygon
	c.flatten(geom.Point{}, &out)
	return out
}

func (c *Cell) flatten(offset geom.Point, out *[]geom.Polygon) {
	for _, p := range c.polygons {
		*out = append(*out, p.Translate(offset))
	}
	for _, r := range c.refs {
		r.Cell.flatten(geom.Pt(offset.X+r.Origin.X, offset.Y+r.Origin.Y), out)
	}
}

// CellBuilder accumulates the contents of a cell.
type CellBuilder struct {
	name     Name
	polygons []geom.Polygon
	refs     []Reference
}

// NewCellBuilder starts a cell with a validated name.
func NewCellBuilder(name Name) *CellBuilder {
	return &CellBuilder{name: name}
}

// AddPolygons appends copies of ps.
func (b *CellBuilder) AddPolygons(ps ...geom.Polygon) *CellBuilder {
	for _, p := range ps {
		b.polygons = append(b.polygons, p.Clone())
	}
	return b
}

// AddReference places cell at origin. Nil cells are ignored.
func (b *CellBuilder) AddReference(cell *Cell, origin geom.Point) *CellBuilder {
	if cell != nil {
		b.refs = append(b.refs, Reference{Cell: cell, Origin: origin})
	}
	return b
}

// Build finalizes the cell. The builder may keep being used; later
// additions do not affect cells already built.
func (b *CellBuilder) Build() *Cell {
	return &Cell{
		name:     b.name,
		polygons: append([]geom.Polygon(nil), b.polygons...),
		refs:     append([]Reference(nil), b.refs...),
	}
}

// Children returns c and every cell it references, recursively, each once,
// in depth-first order.
func Children(c *Cell) []*Cell {
	seen := map[*Cell]bool{}
	var out []*Cell
	var walk func(*Cell)
	walk = func(cell *Cell) {
		if seen[cell] {
			return
		}
		seen[cell] = true
		out = append(out, cell)
		for _, r := range cell.refs {
			walk(r.Cell)
		}
	}
	walk(c)
	return out
}
