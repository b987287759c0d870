package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/masktower/pkg/array"
	"github.com/matzehuels/masktower/pkg/config"
	"github.com/matzehuels/masktower/pkg/devices"
	"github.com/matzehuels/masktower/pkg/feature"
	"github.com/matzehuels/masktower/pkg/library"
	"github.com/matzehuels/masktower/pkg/observability"
	"github.com/matzehuels/masktower/pkg/sink"
)

// Compile builds every array of layout and collects the cell tree into a
// library. Arrays without count_0 continue numbering from the previous
// array. Default array names that would collide get a numeric suffix.
// Arrays with the same device and device options share one feature, and
// with it one template cell.
func Compile(ctx context.Context, layout *config.Layout, opts Options) (*Compiled, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	layers, err := layout.LayerMap()
	if err != nil {
		return nil, err
	}
	topName, err := library.NewName(layout.TopName())
	if err != nil {
		return nil, fmt.Errorf("top cell: %w", err)
	}

	libOpts := []library.Option{library.WithLogger(opts.Logger)}
	if opts.StrictNames || layout.StrictNames {
		libOpts = append(libOpts, library.WithStrictNames())
	}
	lib := library.New(layout.Name, libOpts...)
	builder := array.NewBuilder(opts.Kernel, opts.Logger)
	top := library.NewCellBuilder(topName)

	out := &Compiled{Library: lib, Kernel: opts.Kernel}
	used := map[string]int{}
	features := map[string]feature.Feature{}
	nextID := 0

	for i, spec := range layout.Arrays {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := deviceKey(spec)
		f, ok := features[key]
		if !ok {
			ctor, err := devices.Lookup(spec.Device)
			if err != nil {
				return nil, fmt.Errorf("arrays[%d]: %w", i, err)
			}
			if f, err = ctor(layers, opts.Kernel, spec.DeviceOptions()...); err != nil {
				return nil, fmt.Errorf("arrays[%d] %s: %w", i, spec.Device, err)
			}
			features[key] = f
		}
		aopts, err := spec.Options(layers, nextID)
		if err != nil {
			return nil, fmt.Errorf("arrays[%d]: %w", i, err)
		}
		if aopts.Name == "" {
			aopts.Name = uniqueName(used, fmt.Sprintf("Array_%s", f.Name()))
		} else {
			used[aopts.Name]++
		}

		observability.Pipeline().OnArrayStart(ctx, aopts.Name, spec.Device)
		start := time.Now()
		res, err := builder.Build(f, aopts)
		if err != nil {
			observability.Pipeline().OnArrayComplete(ctx, aopts.Name, 0, time.Since(start), err)
			return nil, fmt.Errorf("arrays[%d] %s: %w", i, aopts.Name, err)
		}
		observability.Pipeline().OnArrayComplete(ctx, aopts.Name, res.Placed, time.Since(start), nil)

		top.AddReference(res.Cell, spec.Origin.Point())
		out.Arrays = append(out.Arrays, sink.ArraySummary{
			Name:    res.Cell.Name().String(),
			Device:  spec.Device,
			Built:   len(res.Built),
			Placed:  res.Placed,
			Skipped: res.Skipped,
			FirstID: aopts.Count0,
			NextID:  res.NextID,
		})
		nextID = res.NextID
	}

	out.Top = top.Build()
	if err := lib.AddTree(out.Top); err != nil {
		return nil, err
	}
	return out, nil
}

func deviceKey(a config.ArraySpec) string {
	dim := "-"
	if a.Dimensions != nil {
		dim = fmt.Sprint(*a.Dimensions)
	}
	return fmt.Sprintf("%s|%v|%s|%s", a.Device, a.Bounds, dim, a.LayerName)
}

func uniqueName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s_%d", name, n)
	}
	return name
}
