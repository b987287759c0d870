package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/masktower/pkg/render/hierarchy"
	"github.com/matzehuels/masktower/pkg/sink"
)

// Render writes c in each of formats. summary is embedded in the JSON
// output.
func Render(ctx context.Context, c *Compiled, summary sink.Summary, formats []string, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := renderFormat(ctx, c, summary, f, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		out[f] = data
	}
	return out, nil
}

func renderFormat(ctx context.Context, c *Compiled, summary sink.Summary, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatGDS:
		var gdsOpts []sink.GDSOption
		if !opts.Timestamp.IsZero() {
			gdsOpts = append(gdsOpts, sink.WithTimestamp(opts.Timestamp))
		}
		var buf bytes.Buffer
		if err := sink.WriteGDS(&buf, c.Library, c.Kernel, gdsOpts...); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatSVG:
		return sink.RenderSVG(c.Top, sink.WithBackground("white")), nil
	case FormatPDF:
		return sink.RenderPDF(c.Top)
	case FormatJSON:
		return sink.RenderJSON(summary)
	case FormatDOT:
		return []byte(hierarchy.ToDOT(c.Library, hierarchy.Options{Detailed: opts.Detailed})), nil
	case FormatGraph:
		return hierarchy.RenderSVG(ctx, hierarchy.ToDOT(c.Library, hierarchy.Options{Detailed: opts.Detailed}))
	default:
		return nil, ValidateFormat(format)
	}
}
