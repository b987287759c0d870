package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/masktower/pkg/cache"
	"github.com/matzehuels/masktower/pkg/config"
	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/observability"
	"github.com/matzehuels/masktower/pkg/sink"
)

const chipTOML = `
name = "Chip"

[layers.mesa]
layer = 1

[layers.via]
layer = 2
polarity = "negative"

[layers.metal]
layer = 3

[[arrays]]
device = "FerroTest"
values = [50.0, 100.0]
repeat_parallel = 2
label_schema = "{id:02d}"
label_layer = "metal"

[[arrays]]
device = "MetalLine"
origin = [0.0, -2000.0]
values = [[1000.0, 10.0], [2000.0, 10.0]]
`

func quietLogger() *log.Logger { return log.NewWithOptions(io.Discard, log.Options{}) }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"gds", false},
		{"svg", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"graph", false},
		{"png", true},
		{"GDS", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestExtension(t *testing.T) {
	if got := Extension(FormatGraph); got != "graph.svg" {
		t.Errorf("Extension(graph) = %q", got)
	}
	if got := Extension(FormatGDS); got != "gds" {
		t.Errorf("Extension(gds) = %q", got)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var empty Options
	if err := empty.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty options error = %v, want INVALID_INPUT", err)
	}

	inline := Options{Layout: []byte(chipTOML)}
	if err := inline.ValidateAndSetDefaults(); err == nil {
		t.Error("inline layout without format should fail")
	}

	bad := Options{LayoutPath: "x.toml", Formats: []string{"gds", "png"}}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("unknown format should fail")
	}

	o := Options{LayoutPath: "x.toml"}
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Equal(t, []string{FormatGDS}, o.Formats)
	assert.NotNil(t, o.Logger)
	assert.NotNil(t, o.Kernel)
	k := o.Kernel
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Same(t, k, o.Kernel, "second call is a no-op")
}

func TestExecuteAndCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(c, nil, quietLogger())
	defer runner.Close()

	opts := Options{
		Layout:       []byte(chipTOML),
		LayoutFormat: config.FormatTOML,
		Formats:      []string{FormatGDS, FormatJSON, FormatDOT},
		Timestamp:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	first, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	require.NotNil(t, first.Compiled)
	assert.False(t, first.CacheInfo.RenderHit)
	assert.Len(t, first.Artifacts, 3)
	assert.True(t, bytes.HasPrefix(first.Artifacts[FormatGDS], []byte{0x00, 0x06, 0x00, 0x02}))
	assert.Contains(t, string(first.Artifacts[FormatDOT]), `"Chip_Top" -> "Array_FerroTestBase"`)

	var summary sink.Summary
	require.NoError(t, json.Unmarshal(first.Artifacts[FormatJSON], &summary))
	assert.Equal(t, first.RunID, summary.RunID)
	assert.Equal(t, []string{"Chip_Top"}, summary.Top)
	require.Len(t, summary.Arrays, 2)
	assert.Equal(t, sink.ArraySummary{Name: "Array_FerroTestBase", Device: "FerroTest", Built: 2, Placed: 4, FirstID: 0, NextID: 4}, summary.Arrays[0])
	assert.Equal(t, sink.ArraySummary{Name: "Array_MetalLineBase", Device: "MetalLine", Built: 2, Placed: 2, FirstID: 4, NextID: 6}, summary.Arrays[1])
	assert.Equal(t, 6, first.Stats.Placed)

	second, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, 3, second.CacheInfo.Hits)
	assert.Nil(t, second.Compiled)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.RunID, second.Summary.RunID, "summary comes from the compiling run")
	assert.Equal(t, first.Artifacts, second.Artifacts)

	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.NotNil(t, third.Compiled)
	assert.False(t, third.CacheInfo.RenderHit)

	opts.Refresh = false
	opts.Formats = []string{FormatGDS, FormatSVG}
	fourth, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.NotNil(t, fourth.Compiled, "a missing format forces a compile")
}

func TestExecuteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wafer_b.toml")
	data := "[layers.mesa]\nlayer = 1\n[[arrays]]\ndevice = \"FerroTest\"\nvalues = [50.0]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	runner := NewRunner(nil, nil, quietLogger())
	res, err := runner.Execute(context.Background(), Options{LayoutPath: path, Formats: []string{FormatSVG}})
	require.NoError(t, err)
	assert.Equal(t, "wafer_b", res.Layout.Name)
	assert.Equal(t, cache.Hash([]byte(data)), res.LayoutHash)
	assert.Contains(t, string(res.Artifacts[FormatSVG]), "<title>wafer_b_Top</title>")

	_, err = runner.Execute(context.Background(), Options{LayoutPath: filepath.Join(t.TempDir(), "none.toml")})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestCompileNames(t *testing.T) {
	layout, err := config.Parse([]byte(`
name = "N"
[layers.mesa]
layer = 1
[[arrays]]
device = "FerroTest"
values = [50.0]
[[arrays]]
device = "FerroTest"
values = [60.0]
`), config.FormatTOML)
	require.NoError(t, err)

	c, err := Compile(context.Background(), layout, Options{LayoutPath: "n.toml", Logger: quietLogger()})
	require.NoError(t, err)
	require.Len(t, c.Arrays, 2)
	assert.Equal(t, "Array_FerroTestBase", c.Arrays[0].Name)
	assert.Equal(t, "Array_FerroTestBase_2", c.Arrays[1].Name)
	assert.Equal(t, 1, c.Arrays[1].FirstID)
}

func TestCompileStrictDuplicate(t *testing.T) {
	layout, err := config.Parse([]byte(`
name = "N"
strict_names = true
[layers.mesa]
layer = 1
[[arrays]]
device = "FerroTest"
name = "Block"
values = [50.0]
[[arrays]]
device = "FerroTest"
name = "Block"
values = [60.0]
`), config.FormatTOML)
	require.NoError(t, err)

	_, err = Compile(context.Background(), layout, Options{LayoutPath: "n.toml", Logger: quietLogger()})
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateName), "error: %v", err)
}

func TestCompileStrictSharedTemplate(t *testing.T) {
	layout, err := config.Parse([]byte(`
name = "N"
strict_names = true
[layers.mesa]
layer = 1
[[arrays]]
device = "FerroTest"
values = [50.0]
[[arrays]]
device = "FerroTest"
values = [60.0]
`), config.FormatTOML)
	require.NoError(t, err)

	c, err := Compile(context.Background(), layout, Options{LayoutPath: "n.toml", Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Library.Skipped())
	_, ok := c.Library.Cell("FerroTestBase")
	assert.True(t, ok)
}

type arrayCounter struct {
	observability.NoopPipelineHooks
	arrays int
}

func (a *arrayCounter) OnArrayComplete(context.Context, string, int, time.Duration, error) { a.arrays++ }

func TestCompileHooks(t *testing.T) {
	defer observability.Reset()
	h := &arrayCounter{}
	observability.SetPipelineHooks(h)

	layout, err := config.Parse([]byte(chipTOML), config.FormatTOML)
	require.NoError(t, err)
	_, err = Compile(context.Background(), layout, Options{LayoutPath: "chip.toml", Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, 2, h.arrays)
}
