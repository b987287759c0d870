// Package geom defines the value types the layout engine composes: points,
// layer tags, polygons with optional holes, axis-aligned boxes, and affine
// transforms.
//
// All methods return new values. A Polygon passed to any function in this
// module is treated as immutable input, so the same base shape can be reused
// by many cells and grid slots without aliasing.
//
// Coordinates are micrometres.
package geom
