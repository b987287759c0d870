package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output      string   // output base path
	formats     []string // output formats
	noCache     bool     // bypass the artifact cache entirely
	cacheURL    string   // redis:// or mongodb:// cache instead of the file cache
	cacheScope  string   // key prefix inside a shared cache
	strictNames bool     // fail on duplicate cell names
	refresh     bool     // recompile even when cached
	detailed    bool     // polygon and reference counts in hierarchy graphs
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var formatsStr string
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <layout.toml|layout.yaml>",
		Short: "Compile a layout file into GDSII and previews",
		Long: `Compile a layout file into GDSII and optional previews.

Outputs are written next to the layout file unless -o is given. With several
formats, -o is a base path and each format adds its own extension.

Examples:
  masktower build wafer.toml                      # wafer.gds
  masktower build wafer.toml -f gds,svg,json      # wafer.gds, wafer.svg, wafer.json
  masktower build wafer.yaml -o out/chip -f gds,graph
  masktower build wafer.toml --cache-url redis://localhost:6379/0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output != "" {
				if err := errors.ValidatePath(opts.output); err != nil {
					return err
				}
			}
			return c.runBuild(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: layout path without extension)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): gds (default), svg, pdf, json, dot, graph (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&opts.cacheURL, "cache-url", "", "shared cache (redis://, rediss:// or mongodb://); also "+cacheURLEnv)
	cmd.Flags().StringVar(&opts.cacheScope, "cache-scope", "", "keep this project's entries apart in a shared cache; also "+cacheScopeEnv)
	cmd.Flags().BoolVar(&opts.strictNames, "strict-names", false, "fail on duplicate cell names instead of skipping them")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompile even when cached")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show polygon counts in hierarchy graphs")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, layoutPath string, opts buildOpts) error {
	runner := c.newRunner(ctx, opts.noCache, opts.cacheURL, opts.cacheScope)
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, pipeline.Options{
		LayoutPath:  layoutPath,
		Formats:     opts.formats,
		StrictNames: opts.strictNames,
		Detailed:    opts.detailed,
		Refresh:     opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compiled %s", filepath.Base(layoutPath)))

	paths, err := writeArtifacts(res, outputBase(layoutPath, opts.output))
	if err != nil {
		return err
	}

	printSuccess("Built %s", res.Layout.Name)
	printStats(len(res.Summary.Cells), placedTotal(res), res.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	if res.Summary.Skipped > 0 {
		printWarning("%d duplicate cell names skipped", res.Summary.Skipped)
	}
	return nil
}

// writeArtifacts writes every artifact of res under base, in sorted format
// order, and returns the written paths.
func writeArtifacts(res *pipeline.Result, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	formats := make([]string, 0, len(res.Artifacts))
	for f := range res.Artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p := outputPath(base, f)
		if err := os.WriteFile(p, res.Artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func placedTotal(res *pipeline.Result) int {
	n := 0
	for _, a := range res.Summary.Arrays {
		n += a.Placed
	}
	return n
}
