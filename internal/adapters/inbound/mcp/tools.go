package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/archlint/archlint/internal/adapters/outbound/config"
	"github.com/archlint/archlint/internal/adapters/outbound/gitinfo"
	"github.com/archlint/archlint/internal/adapters/outbound/parser"
	"github.com/archlint/archlint/internal/adapters/outbound/scanner"
	"github.com/archlint/archlint/internal/application"
	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
	"github.com/archlint/archlint/internal/domain/rules"
)

// registerTools registers all ArchLint MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. archlint_validate
	s.AddTool(
		mcplib.NewTool("archlint_validate",
			mcplib.WithDescription("Validate the project against its declared architecture and return the full report as JSON"),
			mcplib.WithString("aspect",
				mcplib.Description("Aspect to validate: architecture, coverage, style, or all (default: all)"),
			),
		),
		handleValidate(projectPath),
	)

	// 2. archlint_modules
	s.AddTool(
		mcplib.NewTool("archlint_modules",
			mcplib.WithDescription("Returns every module in the project with its layer, role, and kind classification"),
		),
		handleModules(projectPath),
	)

	// 3. archlint_graph
	s.AddTool(
		mcplib.NewTool("archlint_graph",
			mcplib.WithDescription("Returns the module dependency graph: edges, layer traffic, and dependency cycles"),
		),
		handleGraph(projectPath),
	)
}

// newService creates the validation service with the standard set of
// outbound adapters.
func newService() *application.ValidateService {
	return application.NewValidateService(
		scanner.New(parser.New()),
		rules.Default(),
		gitinfo.New(),
	)
}

func loadConfig(projectPath string) (domain.ProjectConfig, error) {
	return config.New().Load(projectPath)
}

func handleValidate(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		aspectName, _ := request.GetArguments()["aspect"].(string)
		if aspectName == "" {
			aspectName = "all"
		}
		aspect, err := domain.ParseAspect(aspectName)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		cfg, err := loadConfig(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		report, err := newService().Validate(ctx, projectPath, aspect, cfg)
		if err != nil {
			return errorResult(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

type moduleInfo struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Package string `json:"package"`
	Kind    string `json:"kind"`
	Layer   string `json:"layer"`
	Role    string `json:"role"`
}

func handleModules(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := loadConfig(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		model, _, _, err := newService().Inspect(ctx, projectPath, cfg)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return jsonResult(moduleList(model))
	}
}

func moduleList(model *domain.ProjectModel) []moduleInfo {
	out := make([]moduleInfo, 0, model.Len())
	for _, m := range model.Modules() {
		out = append(out, moduleInfo{
			Path:    m.Path,
			Name:    m.Name,
			Package: m.Package,
			Kind:    string(m.Kind),
			Layer:   string(m.Layer),
			Role:    string(m.Role),
		})
	}
	return out
}

type graphDump struct {
	Root       string          `json:"root"`
	Edges      []edgeInfo      `json:"edges"`
	Cycles     [][]string      `json:"cycles"`
	LayerEdges []layerEdgeInfo `json:"layerEdges"`
}

type edgeInfo struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Kind   string `json:"kind"`
	Symbol string `json:"symbol"`
}

type layerEdgeInfo struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

func handleGraph(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := loadConfig(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		_, g, _, err := newService().Inspect(ctx, projectPath, cfg)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return jsonResult(dumpGraph(g))
	}
}

func dumpGraph(g *graph.Graph) graphDump {
	dump := graphDump{
		Root:       g.Model().Root(),
		Edges:      []edgeInfo{},
		Cycles:     [][]string{},
		LayerEdges: []layerEdgeInfo{},
	}
	for _, e := range g.AllEdges() {
		dump.Edges = append(dump.Edges, edgeInfo{
			From:   e.From,
			To:     e.To,
			Kind:   string(e.Kind),
			Symbol: e.Symbol,
		})
	}
	if cycles := g.Cycles(); cycles != nil {
		dump.Cycles = cycles
	}
	for _, le := range g.LayerEdges() {
		dump.LayerEdges = append(dump.LayerEdges, layerEdgeInfo{
			From:  string(le.From),
			To:    string(le.To),
			Count: le.Count,
		})
	}
	return dump
}

// operationSignature renders an operation as name, arity, and return type.
func operationSignature(op domain.Operation) string {
	return fmt.Sprintf("%s(%d) %s", op.Name, op.Params, op.ReturnType)
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
