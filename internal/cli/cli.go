// Package cli implements the masktower command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/masktower/pkg/buildinfo"
	"github.com/matzehuels/masktower/pkg/cache"
	"github.com/matzehuels/masktower/pkg/observability"
	"github.com/matzehuels/masktower/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "masktower"

	// cacheURLEnv selects a shared cache when --cache-url is not given.
	cacheURLEnv = "MASKTOWER_CACHE_URL"

	// cacheScopeEnv prefixes cache keys when --cache-scope is not given.
	cacheScopeEnv = "MASKTOWER_CACHE_SCOPE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out     io.Writer
	logFile io.WriteCloser
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetLogFile tees log output into a size-rotated file. An empty path keeps
// logging on the terminal only.
func (c *CLI) SetLogFile(path string) {
	if path == "" {
		return
	}
	lj := &lumberjack.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
	c.logFile = lj
	c.Logger.SetOutput(io.MultiWriter(c.out, lj))
}

// Close releases the log file, if any.
func (c *CLI) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Masktower composes photomask layouts from parametric devices",
		Long: `Masktower builds GDSII photomask layouts from a declarative layout file.
Each array in the file sweeps a parametric test device over a value grid;
the result is written as GDSII plus optional SVG, PDF, JSON and hierarchy
previews.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.layersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	observability.SetPipelineHooks(observability.NewLogHooks(c.Logger))
	observability.SetCacheHooks(observability.NewLogHooks(c.Logger))

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A cache that cannot be
// opened is reported and replaced by no caching. A non-empty scope keeps
// the entries of one project apart from others in a shared cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool, cacheURL, scope string) *pipeline.Runner {
	ch := c.openCache(ctx, noCache, cacheURL)
	return pipeline.NewRunner(ch, keyerFor(scope), c.Logger)
}

func keyerFor(scope string) cache.Keyer {
	if scope == "" {
		scope = os.Getenv(cacheScopeEnv)
	}
	if scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), scope+":")
}

func (c *CLI) openCache(ctx context.Context, noCache bool, cacheURL string) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if cacheURL == "" {
		cacheURL = os.Getenv(cacheURLEnv)
	}
	dir, err := cacheDir()
	if err != nil && cacheURL == "" {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	ch, err := cache.Open(ctx, cacheURL, dir)
	if err != nil {
		c.Logger.Warn("cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/masktower/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputBase returns the path prefix for build outputs. Without -o the
// layout file name minus its extension is used, next to the layout.
func outputBase(layoutPath, output string) string {
	if output != "" {
		if graph := "." + pipeline.Extension(pipeline.FormatGraph); strings.HasSuffix(output, graph) {
			return strings.TrimSuffix(output, graph)
		}
		if ext := filepath.Ext(output); ext != "" && pipeline.ValidFormats[ext[1:]] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	return strings.TrimSuffix(layoutPath, filepath.Ext(layoutPath))
}

// outputPath joins the output base and the extension of format.
func outputPath(base, format string) string {
	return base + "." + pipeline.Extension(format)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatGDS}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
