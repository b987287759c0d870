// Package config loads layout description files.
//
// A layout file names a library, declares the layer map and lists the arrays
// to place in the top cell. TOML and YAML are accepted and share one schema:
//
//	name = "DemoChip"
//	top  = "Top"
//
//	[layers.mesa]
//	layer = 1
//
//	[layers.via]
//	layer = 2
//	polarity = "negative"
//	isolate = 5.0
//
//	[[arrays]]
//	device = "FerroTest"
//	values = [50.0, 100.0]
//	repeat_parallel = 3
//	label_schema = "{id:03d}"
//	label_layer = "mesa"
//
// Layer order follows the file. Arrays without count_0 continue numbering
// where the previous array stopped.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/masktower/pkg/errors"
)

// Format identifies a layout file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Layout is a parsed layout file.
type Layout struct {
	Name        string               `toml:"name" yaml:"name"`
	Top         string               `toml:"top" yaml:"top"`
	StrictNames bool                 `toml:"strict_names" yaml:"strict_names"`
	Layers      map[string]LayerSpec `toml:"layers" yaml:"layers"`
	Arrays      []ArraySpec          `toml:"arrays" yaml:"arrays"`

	// layerOrder lists Layers keys in file order.
	layerOrder []string
}

// FormatFromPath infers the syntax from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported layout file %q (want .toml, .yaml or .yml)", path)
	}
}

// Load reads, parses and validates a layout file.
func Load(path string) (*Layout, error) {
	if _, err := FormatFromPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return nil, err
	}
	return ParseFile(path, data)
}

// ParseFile parses data read from path. The syntax follows the extension
// and a missing name defaults to the file stem.
func ParseFile(path string, data []byte) (*Layout, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	l, err := parse(data, f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if l.Name == "" {
		l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Parse parses and validates layout data.
func Parse(data []byte, f Format) (*Layout, error) {
	l, err := parse(data, f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s layout", f)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func parse(data []byte, f Format) (*Layout, error) {
	var l Layout
	switch f {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&l)
		if err != nil {
			return nil, err
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, errors.New(errors.ErrCodeConfiguration, "unknown keys: %v", undec)
		}
		for _, k := range md.Keys() {
			if len(k) == 2 && k[0] == "layers" {
				l.layerOrder = append(l.layerOrder, k[1])
			}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&l); err != nil {
			return nil, err
		}
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		l.layerOrder = yamlLayerOrder(&root)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown layout format %q", f)
	}
	return &l, nil
}

func yamlLayerOrder(root *yaml.Node) []string {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "layers" {
			continue
		}
		layers := doc.Content[i+1]
		var names []string
		for j := 0; j+1 < len(layers.Content); j += 2 {
			names = append(names, layers.Content[j].Value)
		}
		return names
	}
	return nil
}

// LayerNames returns the layer names in file order.
func (l *Layout) LayerNames() []string {
	if len(l.layerOrder) == len(l.Layers) {
		return append([]string(nil), l.layerOrder...)
	}
	names := make([]string, 0, len(l.Layers))
	for n := range l.Layers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Validate checks the layout for configuration errors.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return errors.New(errors.ErrCodeConfiguration, "layout name is required")
	}
	if len(l.Layers) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "layout %s declares no layers", l.Name)
	}
	for _, name := range l.LayerNames() {
		if _, err := l.Layers[name].Rule(); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "layer %q", name)
		}
	}
	if len(l.Arrays) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "layout %s declares no arrays", l.Name)
	}
	for i, a := range l.Arrays {
		if err := a.validate(l); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "arrays[%d]", i)
		}
	}
	return nil
}

// TopName returns the top cell name, defaulting to "<name>_Top".
func (l *Layout) TopName() string {
	if l.Top != "" {
		return l.Top
	}
	return l.Name + "_Top"
}
