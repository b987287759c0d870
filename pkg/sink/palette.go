package sink

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/masktower/pkg/geom"
)

var defaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// LayerColors maps a tag to a CSS hex colour. Tags without an entry fall
// back to the default palette, indexed by layer.
type LayerColors map[geom.Tag]string

func (c LayerColors) color(t geom.Tag) string {
	if s, ok := c[t]; ok {
		return s
	}
	return defaultPalette[t.Layer%len(defaultPalette)]
}

type layerGroup struct {
	tag      geom.Tag
	polygons []geom.Polygon
}

// groupByTag buckets polygons by tag in ascending layer/datatype order.
func groupByTag(ps []geom.Polygon) []layerGroup {
	idx := map[geom.Tag]int{}
	var groups []layerGroup
	for _, p := range ps {
		i, ok := idx[p.Tag]
		if !ok {
			i = len(groups)
			idx[p.Tag] = i
			groups = append(groups, layerGroup{tag: p.Tag})
		}
		groups[i].polygons = append(groups[i].polygons, p)
	}
	slices.SortFunc(groups, func(a, b layerGroup) int { return compareTags(a.tag, b.tag) })
	return groups
}

func compareTags(a, b geom.Tag) int {
	return cmp.Or(cmp.Compare(a.Layer, b.Layer), cmp.Compare(a.Datatype, b.Datatype))
}

func parseHex(s string) (r, g, b int) {
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
