package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masktower/pkg/config"
	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/format"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/pipeline"
	"github.com/matzehuels/masktower/pkg/sink"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		graph   string
		noCache bool
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <layout>",
		Short: "Summarize the cells, arrays and layers of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if graph != "" {
				if err := errors.ValidatePath(graph); err != nil {
					return err
				}
			}
			return c.runInspect(cmd.Context(), args[0], graph, noCache, all)
		},
	}

	cmd.Flags().StringVar(&graph, "graph", "", "write the cell hierarchy as SVG to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&all, "all", false, "list every cell, not only top cells and arrays")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, layoutPath, graph string, noCache, all bool) error {
	runner := c.newRunner(ctx, noCache, "", "")
	defer runner.Close()

	formats := []string{pipeline.FormatJSON}
	if graph != "" {
		formats = append(formats, pipeline.FormatGraph)
	}
	res, err := runner.Execute(ctx, pipeline.Options{LayoutPath: layoutPath, Formats: formats})
	if err != nil {
		return err
	}

	s := res.Summary
	printKeyValue("Library", s.Library)
	printKeyValue("Top", fmt.Sprint(s.Top))
	printKeyValue("Cells", strconv.Itoa(len(s.Cells)))
	printKeyValue("Run", s.RunID)
	fmt.Println()

	if len(s.Arrays) > 0 {
		printTable("Arrays", []string{"Name", "Device", "Built", "Placed", "Skipped", "IDs"}, arrayRows(s.Arrays))
	}
	printTable("Cells", []string{"Name", "Polygons", "Refs", "Size"}, cellRows(s, all))

	layers, err := res.Layout.LayerMap()
	if err != nil {
		return err
	}
	printTable("Layers", []string{"Layer", "GDS", "Polygons"}, layerRows(s.Layers, layers))

	if s.Skipped > 0 {
		printWarning("%d duplicate cell names skipped", s.Skipped)
	}
	if graph != "" {
		if err := os.WriteFile(graph, res.Artifacts[pipeline.FormatGraph], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", graph, err)
		}
		printFile(graph)
	}
	return nil
}

func arrayRows(arrays []sink.ArraySummary) [][]string {
	rows := make([][]string, 0, len(arrays))
	for _, a := range arrays {
		ids := "-"
		if a.NextID > a.FirstID {
			ids = fmt.Sprintf("%d-%d", a.FirstID, a.NextID-1)
		}
		rows = append(rows, []string{
			a.Name, a.Device,
			strconv.Itoa(a.Built), strconv.Itoa(a.Placed), strconv.Itoa(a.Skipped),
			ids,
		})
	}
	return rows
}

// cellRows lists top cells and array cells; with all set it lists every cell.
func cellRows(s sink.Summary, all bool) [][]string {
	show := map[string]bool{}
	for _, t := range s.Top {
		show[t] = true
	}
	for _, a := range s.Arrays {
		show[a.Name] = true
	}
	var rows [][]string
	for _, cs := range s.Cells {
		if !all && !show[cs.Name] {
			continue
		}
		size := "-"
		if len(cs.BBox) == 4 {
			size = fmt.Sprintf("%.1f x %.1f", cs.BBox[2]-cs.BBox[0], cs.BBox[3]-cs.BBox[1])
		}
		rows = append(rows, []string{cs.Name, strconv.Itoa(cs.Polygons), strconv.Itoa(cs.References), size})
	}
	return rows
}

// layerRows names each tag after the layer that emits it. Fine shapes of
// resolution-separated layers appear with a "(fine)" suffix.
func layerRows(counts []sink.LayerSummary, layers format.LayerMap) [][]string {
	names := map[geom.Tag]string{}
	for _, e := range layers.Entries() {
		if e.Rule.SeparateOffset() != 0 {
			names[e.Rule.FineTag()] = e.Name + " (fine)"
		}
	}
	for _, e := range layers.Entries() {
		names[e.Rule.Tag()] = e.Name
	}
	rows := make([][]string, 0, len(counts))
	for _, l := range counts {
		name, ok := names[l.Tag]
		if !ok {
			name = "-"
		}
		rows = append(rows, []string{name, fmt.Sprintf("%d/%d", l.Layer, l.Datatype), strconv.Itoa(l.Polygons)})
	}
	return rows
}

// layersCommand creates the layers command.
func (c *CLI) layersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layers <layout>",
		Short: "Print the layer map of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := config.Load(args[0])
			if err != nil {
				return err
			}
			layers, err := layout.LayerMap()
			if err != nil {
				return err
			}
			printTable(layout.Name, []string{"Name", "GDS", "Polarity", "Isolate", "Fine offset"}, ruleRows(layers))
			return nil
		},
	}
}

func ruleRows(layers format.LayerMap) [][]string {
	rows := make([][]string, 0, layers.Len())
	for _, e := range layers.Entries() {
		r := e.Rule
		polarity := "positive"
		if !r.Positive() {
			polarity = "negative"
		}
		isolate, fine := "-", "-"
		if r.IsolateWidth() != 0 {
			isolate = strconv.FormatFloat(r.IsolateWidth(), 'f', -1, 64)
		}
		if r.SeparateOffset() != 0 {
			fine = fmt.Sprintf("+%d", r.SeparateOffset())
		}
		rows = append(rows, []string{e.Name, fmt.Sprintf("%d/%d", r.Layer(), r.Datatype()), polarity, isolate, fine})
	}
	return rows
}
