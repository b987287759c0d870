// Package pipeline compiles layout files into rendered artifacts.
//
// The pipeline has three stages:
//
//  1. Load: read and validate the layout file
//  2. Compile: build every array, place them in the top cell and collect
//     the cell tree into a library
//  3. Render: write the requested formats (GDSII, SVG, PDF, JSON, DOT,
//     hierarchy graph)
//
// Artifacts are cached by the hash of the layout file, the output format
// and the engine version. When every requested format is cached the
// compile stage is skipped entirely.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    LayoutPath: "wafer.toml",
//	    Formats:    []string{"gds", "svg"},
//	})
//	gds := res.Artifacts["gds"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masktower/pkg/config"
	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
	"github.com/matzehuels/masktower/pkg/sink"
)

// Output formats.
const (
	FormatGDS   = "gds"
	FormatSVG   = "svg"
	FormatPDF   = "pdf"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatGraph = "graph"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatGDS:   true,
	FormatSVG:   true,
	FormatPDF:   true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatGraph: true,
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	switch format {
	case FormatGraph:
		return "graph.svg"
	default:
		return format
	}
}

// Options configure one pipeline run. They serialize to JSON so that a run
// can be recorded next to its outputs.
type Options struct {
	// LayoutPath is read when Layout is empty.
	LayoutPath string `json:"layout_path,omitempty"`
	// Layout holds the layout file contents; LayoutFormat is then required.
	Layout       []byte        `json:"-"`
	LayoutFormat config.Format `json:"layout_format,omitempty"`

	Formats     []string `json:"formats,omitempty"`
	StrictNames bool     `json:"strict_names,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger    *log.Logger   `json:"-"`
	Kernel    kernel.Kernel `json:"-"`
	Timestamp time.Time     `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	RunID string

	// Layout is the parsed layout file.
	Layout *config.Layout

	// LayoutHash is the SHA-256 of the layout file.
	LayoutHash string

	// Compiled is nil when every artifact came from the cache.
	Compiled *Compiled

	// Summary describes the library; on a full cache hit it is the
	// summary stored by the run that compiled it.
	Summary sink.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Compiled is the in-memory result of the compile stage.
type Compiled struct {
	Library *library.Library
	Top     *library.Cell
	Arrays  []sink.ArraySummary
	Kernel  kernel.Kernel
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cells       int
	Placed      int
	LoadTime    time.Duration
	CompileTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo reports cache usage of a run.
type CacheInfo struct {
	Hits      int  // artifacts served from the cache
	RenderHit bool // every artifact came from the cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: gds, svg, pdf, json, dot, graph)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.LayoutPath == "" && len(o.Layout) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout path or layout data is required")
	}
	if len(o.Layout) > 0 && o.LayoutFormat == "" {
		return errors.New(errors.ErrCodeInvalidInput, "layout_format is required with inline layout data")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatGDS}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Kernel == nil {
		k, err := kernel.NewPlanar(kernel.WithLogger(o.Logger))
		if err != nil {
			return fmt.Errorf("init kernel: %w", err)
		}
		o.Kernel = k
	}
	o.validated = true
	return nil
}
