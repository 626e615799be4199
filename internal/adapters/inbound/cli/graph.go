package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/archlint/archlint/internal/adapters/outbound/config"
	"github.com/archlint/archlint/internal/adapters/outbound/gitinfo"
	"github.com/archlint/archlint/internal/adapters/outbound/parser"
	"github.com/archlint/archlint/internal/adapters/outbound/scanner"
	"github.com/archlint/archlint/internal/adapters/outbound/tui"
	"github.com/archlint/archlint/internal/application"
	"github.com/archlint/archlint/internal/domain/graph"
	"github.com/archlint/archlint/internal/domain/rules"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Visualize the module dependency graph",
		Long:  "Build the dependency graph of a source tree and display module coupling, layer traffic, and dependency cycles.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.New().Load(absPath)
			if err != nil {
				return err
			}

			svc := application.NewValidateService(
				scanner.New(parser.New()),
				rules.Default(),
				gitinfo.New(),
			)

			_, g, _, err := svc.Inspect(cmd.Context(), absPath, cfg)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if jsonOutput {
				return renderGraphJSON(cmd, g)
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderGraph(g, absPath))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output graph data as JSON")
	return cmd
}

type graphJSONOutput struct {
	Root       string          `json:"root"`
	Modules    []moduleJSON    `json:"modules"`
	Edges      []edgeJSON      `json:"edges"`
	Cycles     [][]string      `json:"cycles"`
	LayerEdges []layerEdgeJSON `json:"layerEdges"`
}

type moduleJSON struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Layer  string `json:"layer"`
	Role   string `json:"role"`
	FanIn  int    `json:"fanIn"`
	FanOut int    `json:"fanOut"`
}

type edgeJSON struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Kind   string `json:"kind"`
	Symbol string `json:"symbol"`
	Line   int    `json:"line,omitempty"`
}

type layerEdgeJSON struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

func renderGraphJSON(cmd *cobra.Command, g *graph.Graph) error {
	model := g.Model()

	out := graphJSONOutput{
		Root:       model.Root(),
		Modules:    []moduleJSON{},
		Edges:      []edgeJSON{},
		Cycles:     [][]string{},
		LayerEdges: []layerEdgeJSON{},
	}

	for _, m := range model.Modules() {
		out.Modules = append(out.Modules, moduleJSON{
			Path:   m.Path,
			Name:   m.Name,
			Layer:  string(m.Layer),
			Role:   string(m.Role),
			FanIn:  len(g.InEdges(m.Path)),
			FanOut: len(g.Edges(m.Path)),
		})
	}

	for _, e := range g.AllEdges() {
		out.Edges = append(out.Edges, edgeJSON{
			From:   e.From,
			To:     e.To,
			Kind:   string(e.Kind),
			Symbol: e.Symbol,
			Line:   e.Line,
		})
	}

	if cycles := g.Cycles(); cycles != nil {
		out.Cycles = cycles
	}

	for _, le := range g.LayerEdges() {
		out.LayerEdges = append(out.LayerEdges, layerEdgeJSON{
			From:  string(le.From),
			To:    string(le.To),
			Count: le.Count,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
