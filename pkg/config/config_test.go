package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/geom"
)

const demoTOML = `
name = "Demo"

[layers.via]
layer = 2
polarity = "negative"
isolate = 5.0

[layers.mesa]
layer = 1
datatype = 1

[[arrays]]
device = "FerroTest"
origin = [100.0, 0.0]
values = [50.0, 100.0]
repeat_parallel = 3
label_schema = "{id:03d}"
label_layer = "mesa"
label_style = { size = 20.0 }
exclusions = [[[100.0, 0.0], [110.0, 0.0], [110.0, 10.0]]]

[[arrays]]
device = "MetalLine"
parameters = [[100.0, 200.0], [5.0]]
count_0 = 100
`

const demoYAML = `
name: Demo
layers:
  via:
    layer: 2
    polarity: negative
    isolate: 5.0
  mesa:
    layer: 1
    datatype: 1
arrays:
  - device: FerroTest
    origin: [100.0, 0.0]
    values: [50.0, 100.0]
    repeat_parallel: 3
    label_schema: "{id:03d}"
    label_layer: mesa
    label_style: {size: 20.0}
    exclusions:
      - [[100.0, 0.0], [110.0, 0.0], [110.0, 10.0]]
  - device: MetalLine
    parameters: [[100.0, 200.0], [5.0]]
    count_0: 100
`

func TestParseFormats(t *testing.T) {
	for _, tc := range []struct {
		format Format
		data   string
	}{
		{FormatTOML, demoTOML},
		{FormatYAML, demoYAML},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			l, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)

			assert.Equal(t, "Demo", l.Name)
			assert.Equal(t, "Demo_Top", l.TopName())
			assert.Equal(t, []string{"via", "mesa"}, l.LayerNames())

			layers, err := l.LayerMap()
			require.NoError(t, err)
			assert.Equal(t, []string{"via", "mesa"}, layers.Names())
			via, err := layers.Rule("via")
			require.NoError(t, err)
			assert.False(t, via.Positive())
			assert.Equal(t, 5.0, via.IsolateWidth())

			require.Len(t, l.Arrays, 2)
			first, err := l.Arrays[0].Options(layers, 7)
			require.NoError(t, err)
			assert.Equal(t, 7, first.Count0, "count_0 unset continues numbering")
			assert.Equal(t, 3, first.RepeatParallel)
			require.Len(t, first.Parameters, 1)
			assert.Len(t, first.Parameters[0], 2)
			assert.Equal(t, geom.Tag{Layer: 1, Datatype: 1}, first.LabelTag)
			assert.Equal(t, 20.0, first.LabelStyle.Size)
			require.Len(t, first.Exclusions, 1)
			assert.Equal(t, geom.Pt(0, 0), first.Exclusions[0].Points[0], "exclusions shift into array coordinates")

			second, err := l.Arrays[1].Options(layers, 7)
			require.NoError(t, err)
			assert.Equal(t, 100, second.Count0)
			assert.Len(t, second.Parameters, 2)
		})
	}
}

func TestLayerSpecDefaults(t *testing.T) {
	fine := 0.2
	rule, err := LayerSpec{Layer: 3, SeparateResolution: 10, FineWidth: &fine}.Rule()
	require.NoError(t, err)
	assert.True(t, rule.Positive())
	assert.Equal(t, 0.2, rule.Resolution().FineWidth)
	assert.Equal(t, 0.03, rule.Resolution().Overlap)
	assert.Equal(t, geom.Tag{Layer: 13}, rule.FineTag())
}

func TestValuesFromLayers(t *testing.T) {
	l, err := Parse([]byte(demoTOML+"\n[[arrays]]\ndevice = \"ProfilometerTest\"\nvalues_from = \"layers\"\n"), FormatTOML)
	require.NoError(t, err)
	layers, err := l.LayerMap()
	require.NoError(t, err)

	opts, err := l.Arrays[2].Options(layers, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"via", "mesa"}}, opts.Parameters)
}

func TestDeviceOptions(t *testing.T) {
	a := ArraySpec{
		Device:     "ProfilometerTest",
		Bounds:     []Vec{{0, 0}, {10, 0}, {10, 10}},
		Dimensions: &Vec{20, 30},
		LayerName:  "mesa",
	}
	assert.Len(t, a.DeviceOptions(), 3)
	assert.Empty(t, ArraySpec{Device: "FerroTest"}.DeviceOptions())
}

func TestValidationErrors(t *testing.T) {
	base := `
name = "X"
[layers.mesa]
layer = 1
`
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"no arrays", base, errors.ErrCodeConfiguration},
		{"no layers", "name = \"X\"\n[[arrays]]\ndevice = \"FerroTest\"\n", errors.ErrCodeConfiguration},
		{"unknown device", base + "[[arrays]]\ndevice = \"Nope\"\n", errors.ErrCodeConfiguration},
		{"bad axis", base + "[[arrays]]\ndevice = \"FerroTest\"\naxis = 2\n", errors.ErrCodeConfiguration},
		{"schema without layer", base + "[[arrays]]\ndevice = \"FerroTest\"\nlabel_schema = \"{id}\"\n", errors.ErrCodeConfiguration},
		{"undeclared label layer", base + "[[arrays]]\ndevice = \"FerroTest\"\nlabel_layer = \"metal\"\n", errors.ErrCodeConfiguration},
		{"values and parameters", base + "[[arrays]]\ndevice = \"FerroTest\"\nvalues = [1.0]\nparameters = [[1.0]]\n", errors.ErrCodeConfiguration},
		{"values and values_from", base + "[[arrays]]\ndevice = \"ProfilometerTest\"\nvalues = [\"mesa\"]\nvalues_from = \"layers\"\n", errors.ErrCodeConfiguration},
		{"bad values_from", base + "[[arrays]]\ndevice = \"ProfilometerTest\"\nvalues_from = \"devices\"\n", errors.ErrCodeConfiguration},
		{"short bounds", base + "[[arrays]]\ndevice = \"FerroTest\"\nbounds = [[0.0, 0.0]]\n", errors.ErrCodeConfiguration},
		{"bad polarity", "name = \"X\"\n[layers.mesa]\nlayer = 1\npolarity = \"up\"\n[[arrays]]\ndevice = \"FerroTest\"\n", errors.ErrCodeConfiguration},
		{"layer out of range", "name = \"X\"\n[layers.mesa]\nlayer = 300\n[[arrays]]\ndevice = \"FerroTest\"\n", errors.ErrCodeConfiguration},
		{"unknown key", base + "colour = \"red\"\n", errors.ErrCodeInvalidFormat},
		{"syntax", "name = ", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatTOML)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "error: %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wafer_a.yml")
	data := "layers:\n  mesa:\n    layer: 1\narrays:\n  - device: FerroTest\n    values: [50]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	l, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wafer_a", l.Name)
	assert.Equal(t, []any{50}, l.Arrays[0].Values)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = Load(filepath.Join(dir, "layout.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}
