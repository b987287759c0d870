// Package hierarchy renders the cell reference graph of a library.
//
// Each cell becomes a node and each distinct parent/child pair an edge
// labelled with the number of placements. Top cells are drawn bold, so an
// array and the device cells it places read from top to bottom.
//
//	dot := hierarchy.ToDOT(lib, hierarchy.Options{Detailed: true})
//	svg, err := hierarchy.RenderSVG(ctx, dot)
//
// Rendering uses the WebAssembly build of Graphviz bundled by go-graphviz, so
// no system installation is required.
package hierarchy
