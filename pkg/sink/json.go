package sink

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/library"
)

// Summary describes a compiled library for tooling and the inspect command.
type Summary struct {
	RunID   string         `json:"run_id,omitempty"`
	Library string         `json:"library"`
	Top     []string       `json:"top"`
	Cells   []CellSummary  `json:"cells"`
	Layers  []LayerSummary `json:"layers"`
	Arrays  []ArraySummary `json:"arrays,omitempty"`
	Skipped int            `json:"skipped_duplicates,omitempty"`
}

type CellSummary struct {
	Name       string    `json:"name"`
	Polygons   int       `json:"polygons"`
	References int       `json:"references"`
	BBox       []float64 `json:"bbox,omitempty"`
}

// LayerSummary counts the polygons defined on one tag across all cells,
// without expanding references.
type LayerSummary struct {
	geom.Tag
	Polygons int `json:"polygons"`
}

// ArraySummary records one placed array; NextID is the first id free for the
// following array.
type ArraySummary struct {
	Name    string `json:"name"`
	Device  string `json:"device"`
	Built   int    `json:"built"`
	Placed  int    `json:"placed"`
	Skipped int    `json:"skipped"`
	FirstID int    `json:"first_id"`
	NextID  int    `json:"next_id"`
}

// Summarize collects cell and layer statistics from lib.
func Summarize(lib *library.Library) Summary {
	s := Summary{Library: lib.Name(), Skipped: lib.Skipped()}
	for _, c := range lib.TopCells() {
		s.Top = append(s.Top, c.Name().String())
	}

	counts := map[geom.Tag]int{}
	for _, c := range lib.Cells() {
		cs := CellSummary{
			Name:       c.Name().String(),
			Polygons:   c.NumPolygons(),
			References: c.NumReferences(),
		}
		if b := c.BBox(); !b.Empty() {
			cs.BBox = []float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y}
		}
		s.Cells = append(s.Cells, cs)
		for _, p := range c.Polygons() {
			counts[p.Tag]++
		}
	}

	for _, t := range slices.SortedFunc(maps.Keys(counts), compareTags) {
		s.Layers = append(s.Layers, LayerSummary{Tag: t, Polygons: counts[t]})
	}
	return s
}

// RenderJSON encodes s as indented JSON.
func RenderJSON(s Summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
