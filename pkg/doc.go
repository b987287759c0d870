// Package pkg provides the libraries behind masktower, a parametric layout
// composition engine for photomask design.
//
// # Overview
//
// Masktower turns a declarative layout file into a GDSII cell hierarchy.
// Each entry of the file sweeps a parametric test device over a grid of
// values, places the variants in a labelled array and references the array
// from a top cell. The pkg directory is organized bottom-up:
//
//  1. [geom], [kernel] - polygons, boxes and the polygon boolean kernel
//  2. [library] - named cells, references and the cell library
//  3. [clearance], [format] - clearance rules and mask layer formatting
//  4. [builder], [feature], [devices] - device construction
//  5. [array] - parameter sweeps, labels and placement
//  6. [config], [pipeline], [sink], [cache] - layout files, orchestration,
//     output formats and artifact caching
//
// # Architecture
//
// The typical data flow:
//
//	layout.toml / layout.yaml
//	         ↓
//	    [config] package (parse + validate)
//	         ↓
//	    [devices] + [array] packages (build and place variants)
//	         ↓
//	    [library] package (cell tree, duplicate names resolved)
//	         ↓
//	    [sink] package (GDSII, SVG, PDF, JSON)
//
// # Quick Start
//
// Build one array without a layout file:
//
//	k := kernel.MustPlanar()
//	layers, _ := format.NewLayerMap(format.Entry{Name: "mesa", Rule: format.MustRule(1)})
//	ctor, _ := devices.Lookup("FerroTest")
//	dev, _ := ctor(layers, k)
//
//	res, _ := array.NewBuilder(k, logger).Build(dev, array.Options{
//	    Parameters: array.Sweep(50.0, 100.0),
//	})
//
//	lib := library.New("demo")
//	_ = lib.AddTree(res.Cell)
//	_ = sink.WriteGDS(f, lib, k)
//
// # Testing
//
//	go test ./pkg/...
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/geom
// [kernel]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/kernel
// [library]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/library
// [clearance]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/clearance
// [format]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/format
// [builder]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/builder
// [feature]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/feature
// [devices]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/devices
// [array]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/array
// [config]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/pipeline
// [sink]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/masktower/pkg/cache
package pkg
