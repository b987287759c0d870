// Package array arranges feature instances into labelled grids.
//
// [Builder.Build] expands the parameter sequences into their Cartesian
// product (first sequence outermost). Each parameter tuple becomes a line of
// RepeatParallel identical copies; lines stack perpendicular to that axis,
// and after RepeatPerpendicular lines a new block starts beside the
// previous one. With Axis 0 lines are rows, with Axis 1 they are columns.
//
// Every grid slot consumes one sequence id, starting at Count0, including
// slots skipped because the device footprint would intersect an exclusion
// shape. This keeps numbering stable when exclusions change. Each distinct
// parameter tuple is built exactly once and shared by reference.
package array

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/feature"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

// Options configure one array build.
type Options struct {
	// Name of the container cell. Defaults to "Array_<feature name>".
	Name string

	// Parameters are the swept sequences. Their Cartesian product gives
	// the parameter tuples. Empty means one tuple with no parameters.
	Parameters [][]any

	RepeatParallel      int // copies per tuple along a line, default 1
	RepeatPerpendicular int // lines per block, 0 for a single block
	Axis                int // 0: lines are rows, 1: lines are columns

	LabelSchema string
	LabelStyle  feature.LabelStyle
	LabelTag    geom.Tag

	Count0     int            // first sequence id
	Exclusions []geom.Polygon // slots whose footprint intersects these are skipped
	Margin     geom.Point     // extra spacing added to the footprint pitch

	// Visit, if set, is called for every slot in traversal order.
	Visit func(Entry)
}

// Sweep returns a single parameter sequence.
func Sweep(values ...any) [][]any {
	return [][]any{values}
}

// Entry describes one grid slot. Entries are handed to Options.Visit and
// not retained.
type Entry struct {
	Params   feature.Params
	ID       int
	Row      int
	Col      int
	Rep      int
	Position geom.Point
	Label    string
	Excluded bool
}

// Result of an array build.
type Result struct {
	Cell     *library.Cell   // container with references and labels
	Built    []*library.Cell // one cell per distinct tuple, in build order
	Children []*library.Cell // every cell reachable from Cell, Cell excluded
	Placed   int
	Skipped  int
	NextID   int // first id not consumed, for chaining arrays
}

// Builder builds arrays with a geometry kernel.
type Builder struct {
	Kernel kernel.Kernel
	Logger *log.Logger
}

// NewBuilder returns a Builder. A nil logger discards output.
func NewBuilder(k kernel.Kernel, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Builder{Kernel: k, Logger: logger}
}

type built struct {
	cell   *library.Cell
	access feature.AccessMap
}

// Build lays out f according to opts.
func (b *Builder) Build(f feature.Feature, opts Options) (*Result, error) {
	opts, err := normalize(f, opts)
	if err != nil {
		return nil, err
	}
	name, err := library.NewName(opts.Name)
	if err != nil {
		return nil, err
	}

	var schema *Schema
	if opts.LabelSchema != "" {
		if schema, err = ParseSchema(opts.LabelSchema); err != nil {
			return nil, err
		}
	}

	tuples := product(opts.Parameters)
	footprint := f.Bounds()
	size := footprint.BBox().Size()
	pitch := geom.Pt(size.X+opts.Margin.X, size.Y+opts.Margin.Y)
	perBlock := opts.RepeatPerpendicular
	if perBlock == 0 {
		perBlock = len(tuples)
	}

	container := library.NewCellBuilder(name)
	cache := make(map[string]built)
	res := &Result{}
	id := opts.Count0

	for line, params := range tuples {
		block, lane := line/perBlock, line%perBlock
		for rep := 0; rep < opts.RepeatParallel; rep++ {
			e := Entry{Params: params, ID: id, Rep: rep}
			id++
			along := block*opts.RepeatParallel + rep
			if opts.Axis == 0 {
				e.Row, e.Col = lane, along
			} else {
				e.Row, e.Col = along, lane
			}
			e.Position = geom.Pt(float64(e.Col)*pitch.X, -float64(e.Row)*pitch.Y)

			excluded, err := b.excluded(footprint.Translate(e.Position), opts.Exclusions)
			if err != nil {
				return nil, err
			}
			if excluded {
				e.Excluded = true
				res.Skipped++
				b.Logger.Debug("slot excluded", "array", name, "id", e.ID, "row", e.Row, "col", e.Col)
				visit(opts.Visit, e)
				continue
			}

			key := params.Key()
			inst, ok := cache[key]
			if !ok {
				cell, access, err := f.Build(params)
				if err != nil {
					return nil, fmt.Errorf("build %s%v: %w", f.Name(), []any(params), err)
				}
				inst = built{cell: cell, access: access}
				cache[key] = inst
				res.Built = append(res.Built, cell)
			}

			if schema != nil {
				if e.Label, err = b.label(schema, opts, inst, &e, container); err != nil {
					return nil, fmt.Errorf("label slot %d: %w", e.ID, err)
				}
			}

			container.AddReference(inst.cell, e.Position)
			res.Placed++
			visit(opts.Visit, e)
		}
	}

	res.Cell = container.Build()
	res.Children = library.Children(res.Cell)[1:]
	res.NextID = id

	b.Logger.Info("built array",
		"name", name,
		"placed", res.Placed,
		"skipped", res.Skipped,
		"cells", len(res.Built),
		"next_id", res.NextID)
	return res, nil
}

func (b *Builder) label(schema *Schema, opts Options, inst built, e *Entry, container *library.CellBuilder) (string, error) {
	anchor, ok := inst.access.Point(feature.LabelPos)
	if !ok {
		return "", errors.New(errors.ErrCodeConfiguration,
			"cell %s has no %q access point but a label schema is set", inst.cell.Name(), feature.LabelPos)
	}
	text, err := schema.Format(Values{ID: e.ID, Row: e.Row, Col: e.Col, Rep: e.Rep, Params: e.Params})
	if err != nil {
		return "", err
	}
	at := geom.Pt(e.Position.X+anchor.X, e.Position.Y+anchor.Y)
	polys, err := feature.Label(b.Kernel, text, opts.LabelStyle, at, opts.LabelTag)
	if err != nil {
		return "", err
	}
	container.AddPolygons(polys...)
	return text, nil
}

func (b *Builder) excluded(footprint geom.Polygon, exclusions []geom.Polygon) (bool, error) {
	fb := footprint.BBox()
	for _, ex := range exclusions {
		if !fb.Overlaps(ex.BBox()) {
			continue
		}
		overlap, err := b.Kernel.Boolean([]geom.Polygon{footprint}, []geom.Polygon{ex}, kernel.And)
		if err != nil {
			return false, fmt.Errorf("exclusion test: %w", err)
		}
		if kernel.Area(overlap) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func normalize(f feature.Feature, opts Options) (Options, error) {
	if opts.Name == "" {
		opts.Name = "Array_" + f.Name().String()
	}
	if opts.RepeatParallel == 0 {
		opts.RepeatParallel = 1
	}
	switch {
	case opts.RepeatParallel < 0:
		return opts, errors.New(errors.ErrCodeConfiguration, "repeat_parallel must be positive, got %d", opts.RepeatParallel)
	case opts.RepeatPerpendicular < 0:
		return opts, errors.New(errors.ErrCodeConfiguration, "repeat_perpendicular must be non-negative, got %d", opts.RepeatPerpendicular)
	case opts.Axis != 0 && opts.Axis != 1:
		return opts, errors.New(errors.ErrCodeConfiguration, "axis must be 0 or 1, got %d", opts.Axis)
	case opts.Count0 < 0:
		return opts, errors.New(errors.ErrCodeConfiguration, "count_0 must be non-negative, got %d", opts.Count0)
	}
	for i, seq := range opts.Parameters {
		if len(seq) == 0 {
			return opts, errors.New(errors.ErrCodeConfiguration, "parameter sequence %d is empty", i)
		}
	}
	if f.Bounds().BBox().Empty() {
		return opts, errors.New(errors.ErrCodeMissingBounds, "feature %s has no bounds", f.Name())
	}
	return opts, nil
}

// product returns the Cartesian product of seqs with the first sequence
// varying slowest.
func product(seqs [][]any) []feature.Params {
	out := []feature.Params{{}}
	for _, seq := range seqs {
		next := make([]feature.Params, 0, len(out)*len(seq))
		for _, prefix := range out {
			for _, v := range seq {
				t := make(feature.Params, len(prefix), len(prefix)+1)
				copy(t, prefix)
				next = append(next, append(t, v))
			}
		}
		out = next
	}
	return out
}

func visit(fn func(Entry), e Entry) {
	if fn != nil {
		fn(e)
	}
}
