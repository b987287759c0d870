package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/masktower/pkg/library"
)

// Options configures hierarchy rendering.
type Options struct {
	// Detailed adds polygon and reference counts to node labels.
	Detailed bool
}

// ToDOT converts the library's cell graph to Graphviz DOT format. Nodes are
// emitted children first, matching the GDSII write order.
func ToDOT(lib *library.Library, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	top := map[*library.Cell]bool{}
	for _, c := range lib.TopCells() {
		top[c] = true
	}

	cells := lib.Ordered()
	for _, c := range cells {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, opts.Detailed))}
		if top[c] {
			attrs = append(attrs, "penwidth=2", "fontname=\"bold\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", c.Name().String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range cells {
		counts := map[*library.Cell]int{}
		var order []*library.Cell
		for _, r := range c.References() {
			if counts[r.Cell] == 0 {
				order = append(order, r.Cell)
			}
			counts[r.Cell]++
		}
		for _, child := range order {
			fmt.Fprintf(&buf, "  %q -> %q", c.Name().String(), child.Name().String())
			if n := counts[child]; n > 1 {
				fmt.Fprintf(&buf, " [label=\"x%d\"]", n)
			}
			buf.WriteString(";\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(c *library.Cell, detailed bool) string {
	if !detailed {
		return c.Name().String()
	}
	return fmt.Sprintf("%s\npolygons: %d\nreferences: %d", c.Name(), c.NumPolygons(), c.NumReferences())
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
