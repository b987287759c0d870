// Package library holds the cell hierarchy: validated cell names, immutable
// cells, references that share cells, and the Library that collects them
// under a unique-name registry.
//
// A Library never contains two different cells with the same name. Adding a
// cell that is already present (the same pointer) is a no-op. Adding a
// different cell under a taken name is a caller bug: by default it is
// logged as a warning and skipped, and with [WithStrictNames] it fails with
// a DUPLICATE_NAME error.
package library

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masktower/pkg/errors"
)

// Library is an ordered collection of uniquely named cells.
type Library struct {
	name    string
	cells   []*Cell
	byName  map[string]*Cell
	strict  bool
	skipped int
	logger  *log.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger used for duplicate-name warnings.
func WithLogger(l *log.Logger) Option { return func(lib *Library) { lib.logger = l } }

// WithStrictNames turns duplicate-name warnings into errors.
func WithStrictNames() Option { return func(lib *Library) { lib.strict = true } }

// New creates an empty library.
func New(name string, opts ...Option) *Library {
	lib := &Library{name: name, byName: make(map[string]*Cell)}
	for _, opt := range opts {
		opt(lib)
	}
	if lib.logger == nil {
		lib.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return lib
}

// Name returns the library name.
func (l *Library) Name() string { return l.name }

// Add inserts cells in order, skipping ones already present.
func (l *Library) Add(cells ...*Cell) error {
	for _, c := range cells {
		if c == nil {
			continue
		}
		name := c.Name().String()
		existing, ok := l.byName[name]
		if !ok {
			l.byName[name] = c
			l.cells = append(l.cells, c)
			continue
		}
		if existing == c {
			continue
		}
		if l.strict {
			return errors.New(errors.ErrCodeDuplicateName, "cell %q already present in library %q", name, l.name)
		}
		l.skipped++
		l.logger.Warn("duplicate cell name, skipping", "cell", name, "library", l.name)
	}
	return nil
}

// AddTree inserts cell together with every cell it references.
func (l *Library) AddTree(cell *Cell) error {
	return l.Add(Children(cell)...)
}

// Cell looks up a cell by name.
func (l *Library) Cell(name string) (*Cell, bool) {
	c, ok := l.byName[name]
	return c, ok
}

// Cells returns the cells in insertion order.
func (l *Library) Cells() []*Cell {
	return append([]*Cell(nil), l.cells...)
}

// Len returns the number of cells.
func (l *Library) Len() int { return len(l.cells) }

// Skipped returns how many duplicate-name insertions were skipped.
func (l *Library) Skipped() int { return l.skipped }

// TopCells returns the cells not referenced by any other cell in the
// library, in insertion order.
func (l *Library) TopCells() []*Cell {
	referenced := map[*Cell]bool{}
	for _, c := range l.cells {
		for _, r := range c.refs {
			referenced[r.Cell] = true
		}
	}
	var out []*Cell
	for _, c := range l.cells {
		if !referenced[c] {
			out = append(out, c)
		}
	}
	return out
}

// Ordered returns the cells with every cell placed after all the cells it
// references. Ties keep insertion order.
func (l *Library) Ordered() []*Cell {
	done := map[*Cell]bool{}
	var out []*Cell
	var visit func(*Cell)
	visit = func(c *Cell) {
		if done[c] {
			return
		}
		done[c] = true
		for _, r := range c.refs {
			visit(r.Cell)
		}
		if l.byName[c.Name().String()] == c {
			out = append(out, c)
		}
	}
	for _, c := range l.cells {
		visit(c)
	}
	return out
}
