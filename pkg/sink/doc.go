// Package sink writes compiled layouts to output formats.
//
//   - GDSII: [WriteGDS] writes the library as a GDSII stream with 1 nm
//     database units. Polygons with holes are fractured into hole-free
//     pieces, since BOUNDARY elements cannot carry holes, and references
//     become SREF elements.
//   - SVG: [RenderSVG] flattens one cell into a colour-per-layer preview.
//   - PDF: [RenderPDF] draws the same preview with gofpdf.
//   - JSON: [RenderJSON] writes a [Summary] of cells, layers and arrays.
//
// The previews use even-odd filling so that holes show through.
package sink
